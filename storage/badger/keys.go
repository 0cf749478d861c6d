package badger

import (
	"encoding/binary"

	"github.com/poiesic/faqmatch/core"
)

// Key prefixes for different data types
const (
	vectorPrefix   = "faqvec"
	checksumKeyStr = "faqvecsum"
)

// makeVectorKey generates a key for a cached vector by entry ID.
// Format: prefix:id with the ID in BigEndian so lexicographic iteration
// follows entry order.
func makeVectorKey(id core.ID) []byte {
	prefix := vectorPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// checksumKey is the key under which the corpus checksum tag is stored.
func checksumKey() []byte {
	return []byte(checksumKeyStr)
}

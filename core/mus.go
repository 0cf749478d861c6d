package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types that cross the storage boundary.
// The set is small enough to maintain by hand.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

// VectorMUS serializes embedding vectors.
var VectorMUS = ord.NewSliceSer[float32](raw.Float32)

// CachedVectorMUS serializes CachedVector records.
var CachedVectorMUS = cachedVectorMUS{}

type idMUS struct{}

var _ mus.Serializer[ID] = idMUS{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type cachedVectorMUS struct{}

var _ mus.Serializer[CachedVector] = cachedVectorMUS{}

func (cachedVectorMUS) Marshal(v CachedVector, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += VectorMUS.Marshal(v.Vector, bs[n:])
	return
}

func (cachedVectorMUS) Unmarshal(bs []byte) (v CachedVector, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Vector, n1, err = VectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (cachedVectorMUS) Size(v CachedVector) int {
	return IDMUS.Size(v.Id) + VectorMUS.Size(v.Vector)
}

func (cachedVectorMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = VectorMUS.Skip(bs[n:])
	n += n1
	return
}

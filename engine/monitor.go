package engine

import "github.com/poiesic/faqmatch/core"

// ResolveMonitor provides hooks to observe query resolution.
// Implement this interface to track intermediate rankings and the
// arbitration outcome during a resolve.
type ResolveMonitor interface {
	Start(query string)
	AfterLexicalRanking(candidates []core.ScoredCandidate)
	AfterSemanticRanking(candidates []core.ScoredCandidate)
	SemanticUnavailable(err error)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of ResolveMonitor
type noopMonitor struct{}

var _ ResolveMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                  {}
func (n *noopMonitor) AfterLexicalRanking(_ []core.ScoredCandidate)    {}
func (n *noopMonitor) AfterSemanticRanking(_ []core.ScoredCandidate)   {}
func (n *noopMonitor) SemanticUnavailable(_ error)                     {}
func (n *noopMonitor) Finish(_ *Response)                              {}

package dataset

import (
	"fmt"
	"sync"
)

// Namer generates "<type>-<ordinal>" dataset names, ordinals starting at 1 per type.
type Namer struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewNamer creates a namer with all ordinals at zero
func NewNamer() *Namer {
	return &Namer{counts: make(map[string]int)}
}

// Next returns the next name for a dataset type
func (n *Namer) Next(datasetType string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts[datasetType]++
	return fmt.Sprintf("%s-%d", datasetType, n.counts[datasetType])
}

// defaultNamer names datasets constructed without an explicit Namer
var defaultNamer = NewNamer()

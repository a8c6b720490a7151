package trie

import "sync"

// Locked serializes access to a Trie so several documents can be counted
// into it concurrently.
type Locked struct {
	mu sync.Mutex
	t  *Trie
}

// NewLocked wraps t. t must not be used directly afterwards.
func NewLocked(t *Trie) *Locked {
	return &Locked{t: t}
}

// Increment adds one occurrence of word and returns its new count.
func (l *Locked) Increment(word string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Increment(word)
}

// Lookup returns the count of word and whether it was ever incremented.
func (l *Locked) Lookup(word string) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Lookup(word)
}

// NodeCount returns the number of distinct words stored.
func (l *Locked) NodeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.NodeCount()
}

// Top returns the n most frequent words.
func (l *Locked) Top(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Top(n)
}

// Package trie implements a prefix tree mapping words to occurrence counts.
package trie

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// node is one rune position shared by every word with the same prefix.
// Children are owned by their parent; parent is a navigational back
// reference used only to rebuild a word from its terminal node.
type node struct {
	key      rune
	terminal bool
	count    uint64
	parent   *node
	children map[rune]*node
}

func (n *node) child(r rune) *node {
	return n.children[r]
}

func (n *node) addChild(r rune) *node {
	if n.children == nil {
		n.children = make(map[rune]*node, 4)
	}
	c := &node{key: r, parent: n}
	n.children[r] = c
	return c
}

// Trie maps words to 64-bit counters. The root represents the empty
// prefix and is never terminal. A Trie is not safe for concurrent use;
// see Locked.
type Trie struct {
	root  *node
	nodes int
	cache *lru.Cache[string, *node]
}

// New creates an empty trie without a hot-word cache.
func New() *Trie {
	return &Trie{root: &node{}, nodes: 1}
}

// NewCached creates an empty trie that keeps the terminal nodes of up to
// size recently incremented words in an LRU cache, so frequent words skip
// the walk from the root.
func NewCached(size int) *Trie {
	t := New()
	if size > 0 {
		t.cache, _ = lru.New[string, *node](size)
	}
	return t
}

// Increment adds one occurrence of word and returns its new count.
// Missing nodes along the path are created.
func (t *Trie) Increment(word string) uint64 {
	if t.cache != nil {
		if n, ok := t.cache.Get(word); ok {
			n.count++
			return n.count
		}
	}

	n := t.root
	for _, r := range word {
		next := n.child(r)
		if next == nil {
			next = n.addChild(r)
			t.nodes++
		}
		n = next
	}
	if n == t.root {
		// The empty word has no terminal slot.
		return 0
	}

	if !n.terminal {
		n.terminal = true
		n.count = 0
	}
	n.count++

	if t.cache != nil {
		t.cache.Add(word, n)
	}
	return n.count
}

// Lookup returns the count of word and whether it was ever incremented.
func (t *Trie) Lookup(word string) (uint64, bool) {
	n := t.find(word)
	if n == nil || !n.terminal {
		return 0, false
	}
	return n.count, true
}

// HasPrefix reports whether any stored path starts with prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	return t.find(prefix) != nil
}

func (t *Trie) find(word string) *node {
	n := t.root
	for _, r := range word {
		n = n.child(r)
		if n == nil {
			return nil
		}
	}
	return n
}

// NodeCount returns the number of distinct words stored by visiting the
// whole tree. Prefix nodes that end no word are not counted.
// It is O(total nodes) and meant for diagnostics.
func (t *Trie) NodeCount() int {
	return countTerminal(t.root)
}

func countTerminal(n *node) int {
	count := 0
	for _, c := range n.children {
		if c.terminal {
			count++
		}
		count += countTerminal(c)
	}
	return count
}

// Nodes returns the number of allocated nodes, including the root and
// prefix-only nodes.
func (t *Trie) Nodes() int {
	return t.nodes
}

// ClearCache clears the hot-word cache.
func (t *Trie) ClearCache() {
	if t.cache != nil {
		t.cache.Purge()
	}
}

// CacheSize returns the number of cached words (0 if cache is disabled).
func (t *Trie) CacheSize() int {
	if t.cache == nil {
		return 0
	}
	return t.cache.Len()
}

// CacheEnabled returns true if caching is enabled.
func (t *Trie) CacheEnabled() bool {
	return t.cache != nil
}

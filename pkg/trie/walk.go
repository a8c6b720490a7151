package trie

import (
	"container/heap"
	"slices"
)

// Entry is a word and its count.
type Entry struct {
	Word  string `json:"word"`
	Count uint64 `json:"count"`
}

// Walk calls fn for every stored word in rune order until fn returns false.
func (t *Trie) Walk(fn func(word string, count uint64) bool) {
	walk(t.root, make([]rune, 0, 32), fn)
}

func walk(n *node, prefix []rune, fn func(string, uint64) bool) bool {
	keys := make([]rune, 0, len(n.children))
	for r := range n.children {
		keys = append(keys, r)
	}
	slices.Sort(keys)

	for _, r := range keys {
		c := n.children[r]
		path := append(prefix, r)
		if c.terminal && !fn(string(path), c.count) {
			return false
		}
		if !walk(c, path, fn) {
			return false
		}
	}
	return true
}

// word rebuilds the word ending at n by following parent references.
func (n *node) word() string {
	var depth int
	for p := n; p.parent != nil; p = p.parent {
		depth++
	}
	runes := make([]rune, depth)
	for p := n; p.parent != nil; p = p.parent {
		depth--
		runes[depth] = p.key
	}
	return string(runes)
}

// Top returns the n most frequent words, highest count first. Ties are
// ordered by word.
func (t *Trie) Top(n int) []Entry {
	if n <= 0 {
		return nil
	}

	h := &minHeap{}
	collect(t.root, func(c *node) {
		if h.Len() < n {
			heap.Push(h, candidate{node: c, word: c.word()})
			return
		}
		if c.count < (*h)[0].node.count {
			return
		}
		cand := candidate{node: c, word: c.word()}
		if h.less(cand, (*h)[0]) {
			return
		}
		(*h)[0] = cand
		heap.Fix(h, 0)
	})

	entries := make([]Entry, h.Len())
	for i := len(entries) - 1; i >= 0; i-- {
		c := heap.Pop(h).(candidate)
		entries[i] = Entry{Word: c.word, Count: c.node.count}
	}
	return entries
}

func collect(n *node, fn func(*node)) {
	for _, c := range n.children {
		if c.terminal {
			fn(c)
		}
		collect(c, fn)
	}
}

type candidate struct {
	node *node
	word string
}

// minHeap keeps the weakest of the current top entries at index 0.
type minHeap []candidate

func (h minHeap) less(a, b candidate) bool {
	if a.node.count != b.node.count {
		return a.node.count < b.node.count
	}
	return a.word > b.word
}

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h.less(h[i], h[j]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *minHeap) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}

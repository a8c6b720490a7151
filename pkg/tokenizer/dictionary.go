package tokenizer

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/vellum"
)

// Dictionary holds a stop-word list in an in-memory FST.
type Dictionary struct {
	fst   *vellum.FST
	words int
	mu    sync.RWMutex
}

// NewDictionary loads a stop-word list from file into an FST.
func NewDictionary(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadDictionary(file)
}

// ReadDictionary builds a dictionary from newline-separated words.
// Blank lines and lines starting with '#' are skipped. Every word goes
// through Normalize, so entries match the words the tokenizer emits.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	words := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if word, ok := Normalize([]byte(line)); ok {
			words[word] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	fst, err := buildFST(words)
	if err != nil {
		return nil, err
	}
	return &Dictionary{fst: fst, words: len(words)}, nil
}

// buildFST inserts the words in sorted order, as vellum requires.
func buildFST(words map[string]struct{}) (*vellum.FST, error) {
	sortedWords := make([]string, 0, len(words))
	for word := range words {
		sortedWords = append(sortedWords, word)
	}
	sort.Strings(sortedWords)

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}

	for _, word := range sortedWords {
		if err := builder.Insert([]byte(word), 0); err != nil {
			builder.Close()
			return nil, err
		}
	}

	if err := builder.Close(); err != nil {
		return nil, err
	}
	return vellum.Load(buf.Bytes())
}

// Contains checks if a normalized word is in the dictionary.
func (d *Dictionary) Contains(word string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.fst == nil {
		return false
	}
	_, exists, _ := d.fst.Get([]byte(word))
	return exists
}

// WordCount returns the number of words in the dictionary.
func (d *Dictionary) WordCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.words
}

// Close releases FST resources.
func (d *Dictionary) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fst != nil {
		err := d.fst.Close()
		d.fst = nil
		return err
	}
	return nil
}

package tokenizer

import (
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxWordBytes is the size of the scratch buffer used while lowercasing.
// Words whose lowercased UTF-8 form is longer are rejected.
const MaxWordBytes = 256

// junk holds the bytes trimmed from both ends of a candidate token.
var junk = [256]bool{
	' ': true, '\r': true, '\n': true,
	'.': true, ',': true, ';': true, '!': true, '?': true,
	'"': true, ':': true, '(': true, ')': true, '_': true,
	'[': true, ']': true,
}

// Trim strips junk bytes from both ends of raw without copying.
func Trim(raw []byte) []byte {
	start, end := 0, len(raw)
	for start < end && junk[raw[start]] {
		start++
	}
	for end > start && junk[raw[end-1]] {
		end--
	}
	return raw[start:end]
}

// Normalize trims, validates and lowercases one candidate token.
// It reports false when the trimmed token is empty, is not valid UTF-8,
// contains a non-letter, or lowercases to more than MaxWordBytes bytes.
func Normalize(raw []byte) (string, bool) {
	word := Trim(raw)
	if len(word) == 0 {
		return "", false
	}

	var scratch [MaxWordBytes]byte
	n := 0
	for len(word) > 0 {
		r, size := utf8.DecodeRune(word)
		if r == utf8.RuneError && size <= 1 {
			return "", false
		}
		if !unicode.IsLetter(r) {
			return "", false
		}
		word = word[size:]

		r = unicode.ToLower(r)
		if n+utf8.RuneLen(r) > MaxWordBytes {
			return "", false
		}
		n += utf8.EncodeRune(scratch[n:], r)
	}

	return string(scratch[:n]), true
}

// NormalizerFunc defines a single post-normalization step.
type NormalizerFunc func(string) string

// Normalizer runs Normalize followed by a configurable pipeline of steps.
type Normalizer struct {
	steps []NormalizerFunc
}

// NewNormalizer creates a normalizer with the steps enabled in cfg.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	var steps []NormalizerFunc
	if cfg.FoldAccents {
		steps = append(steps, FoldAccents)
	}
	if cfg.StemEnglish {
		steps = append(steps, StemEnglish)
	}
	return &Normalizer{steps: steps}
}

// NewNormalizerWithSteps creates a normalizer with a custom pipeline.
func NewNormalizerWithSteps(steps ...NormalizerFunc) *Normalizer {
	return &Normalizer{steps: steps}
}

// Normalize applies Normalize and then every configured step in order.
// A step that empties the word rejects it.
func (n *Normalizer) Normalize(raw []byte) (string, bool) {
	word, ok := Normalize(raw)
	if !ok {
		return "", false
	}
	return n.Apply(word)
}

// Apply runs the configured steps on an already normalized word.
func (n *Normalizer) Apply(word string) (string, bool) {
	for _, step := range n.steps {
		word = step(word)
	}
	return word, word != ""
}

// Steps returns the number of post-normalization steps.
func (n *Normalizer) Steps() int {
	return len(n.steps)
}

// FoldAccents removes combining marks after canonical decomposition.
// Decomposes é → e + combining acute, drops the mark, recomposes.
func FoldAccents(s string) string {
	// Chained transformers keep state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// StemEnglish applies the English Snowball stemmer.
func StemEnglish(s string) string {
	stemmed, err := snowball.Stem(s, "english", true)
	if err != nil {
		return s
	}
	return stemmed
}

package tokenizer

// Tokenizer turns delimiter-separated bytes into normalized words.
type Tokenizer struct {
	normalizer *Normalizer
	stop       *Dictionary
}

// NewTokenizer creates a tokenizer from cfg, loading the stop-word list
// when one is configured.
func NewTokenizer(cfg Config) (*Tokenizer, error) {
	t := &Tokenizer{normalizer: NewNormalizer(cfg.Normalizers)}
	if cfg.StopWords != "" {
		dict, err := NewDictionary(cfg.StopWords)
		if err != nil {
			return nil, err
		}
		t.stop = dict
	}
	return t, nil
}

// NewTokenizerWithNormalizer creates a tokenizer with a custom normalizer
// and an optional stop-word dictionary (nil for none).
func NewTokenizerWithNormalizer(norm *Normalizer, stop *Dictionary) *Tokenizer {
	return &Tokenizer{normalizer: norm, stop: stop}
}

// Scan emits the normalized word of every delimiter-terminated span in buf
// and returns the index just past the last delimiter.
// Rejected spans are dropped silently.
func (t *Tokenizer) Scan(buf []byte, emit func(word string)) int {
	return SplitSpans(buf, func(span []byte) {
		if word, ok := t.normalize(span); ok {
			emit(word)
		}
	})
}

// Final scans buf like Scan and then treats the unconsumed remainder as one
// last span. It is used at end of stream, where no delimiter will follow.
func (t *Tokenizer) Final(buf []byte, emit func(word string)) {
	n := t.Scan(buf, emit)
	if n < len(buf) {
		if word, ok := t.normalize(buf[n:]); ok {
			emit(word)
		}
	}
}

// Tokenize returns the words of a complete text in order of appearance.
func (t *Tokenizer) Tokenize(text string) []string {
	var words []string
	t.Final([]byte(text), func(word string) {
		words = append(words, word)
	})
	return words
}

func (t *Tokenizer) normalize(span []byte) (string, bool) {
	word, ok := Normalize(span)
	if !ok {
		return "", false
	}
	if t.stop != nil && t.stop.Contains(word) {
		return "", false
	}
	return t.normalizer.Apply(word)
}

// StopWordCount returns the number of stop words (0 if none are loaded).
func (t *Tokenizer) StopWordCount() int {
	if t.stop == nil {
		return 0
	}
	return t.stop.WordCount()
}

// Close releases resources (call when done with tokenizer).
func (t *Tokenizer) Close() error {
	if t.stop == nil {
		return nil
	}
	return t.stop.Close()
}

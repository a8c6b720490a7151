package tokenizer

// delimiters holds the bytes that separate candidate tokens.
var delimiters = [256]bool{' ': true, '\r': true, '\n': true}

// IsDelimiter reports whether b separates tokens.
func IsDelimiter(b byte) bool {
	return delimiters[b]
}

// IndexDelimiter returns the index of the first delimiter in buf, or -1.
func IndexDelimiter(buf []byte) int {
	for i, b := range buf {
		if delimiters[b] {
			return i
		}
	}
	return -1
}

// SplitSpans calls fn for every non-empty span of buf that is terminated
// by a delimiter. Consecutive delimiters produce no span.
// It returns the index just past the last delimiter; bytes after it are
// not consumed and may be the prefix of a word still to arrive.
// The spans passed to fn alias buf.
func SplitSpans(buf []byte, fn func(span []byte)) int {
	consumed := 0
	for i, b := range buf {
		if !delimiters[b] {
			continue
		}
		if i > consumed {
			fn(buf[consumed:i])
		}
		consumed = i + 1
	}
	return consumed
}

package tokenizer

// NormalizerConfig selects the optional steps run after Normalize.
type NormalizerConfig struct {
	// FoldAccents strips combining marks, so "café" counts as "cafe".
	FoldAccents bool
	// StemEnglish reduces words to their English Snowball stem.
	StemEnglish bool
}

// Config configures a Tokenizer. The zero value is the plain
// trim/validate/lowercase pipeline without a stop-word list.
type Config struct {
	// StopWords is the path of a newline-separated list of words to drop.
	StopWords   string
	Normalizers NormalizerConfig
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kerem-kaynak/wordfreq/pkg/tokenizer"
	"github.com/kerem-kaynak/wordfreq/pkg/trie"
)

const (
	iterations = 100000
	warmup     = 1000
	boxWidth   = 62

	// ANSI color codes
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

var line = strings.Repeat("─", boxWidth)

// paragraph is scanned by the stream benchmarks.
const paragraph = "It was the best of times, it was the worst of times, it was the age of wisdom, " +
	"it was the age of foolishness, it was the epoch of belief, it was the epoch of incredulity;\r\n"

func main() {
	stopWords := ""
	if len(os.Args) > 1 {
		stopWords = os.Args[1]
	}

	fmt.Print("Loading tokenizer... ")
	start := time.Now()
	tok, err := tokenizer.NewTokenizer(tokenizer.Config{StopWords: stopWords})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer tok.Close()
	fmt.Printf("done (%d stop words in %v)\n", tok.StopWordCount(), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Iterations: %d (warmup: %d)\n", iterations, warmup)
	fmt.Println("Reference: 1 second = 1,000,000,000 ns")
	fmt.Println()

	// Stream benchmarks
	printHeader("STREAM THROUGHPUT")
	text := []byte(paragraph)
	scanner := tokenizer.NewStreamScanner(tok)
	counts := trie.New()
	bench("Single chunk", func() {
		scanner.Run(context.Background(), tokenizer.NewSliceSource(text), counts)
	})
	bench("16-byte chunks", func() {
		scanner.Run(context.Background(), tokenizer.NewReaderSource(bytes.NewReader(text), 16), counts)
	})
	bench("Tokenize (whole text)", func() {
		tok.Tokenize(paragraph)
	})
	printFooter()
	fmt.Println()

	// Component breakdown
	printHeader("COMPONENT BREAKDOWN")
	spans := []byte("the quick brown fox ")
	bench("Split spans", func() {
		tokenizer.SplitSpans(spans, func([]byte) {})
	})
	word := []byte("(Wärmedämmung),")
	bench("Normalize", func() {
		tokenizer.Normalize(word)
	})
	bench("Normalize (rejected)", func() {
		tokenizer.Normalize([]byte("abc123"))
	})
	full := tokenizer.NewNormalizer(tokenizer.NormalizerConfig{FoldAccents: true, StemEnglish: true})
	bench("Normalizer (full)", func() {
		full.Normalize(word)
	})
	printFooter()
	fmt.Println()

	// Trie operations
	printHeader("TRIE OPERATIONS")
	plain := trie.New()
	bench("Increment", func() {
		plain.Increment("incredulity")
	})
	cached := trie.NewCached(1024)
	bench("Increment (cache hit)", func() {
		cached.Increment("incredulity")
	})
	bench("Lookup", func() {
		plain.Lookup("incredulity")
	})
	bench("NodeCount", func() {
		counts.NodeCount()
	})
	printFooter()
}

func bench(name string, fn func()) {
	for i := 0; i < warmup; i++ {
		fn()
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		fn()
	}
	elapsed := time.Since(start)

	opsPerSec := float64(iterations) / elapsed.Seconds()
	nsPerOp := float64(elapsed.Nanoseconds()) / float64(iterations)

	// Truncate name if too long
	displayName := name
	if len(displayName) > 26 {
		displayName = displayName[:26]
	}

	// Format with colors - build plain string for padding, colored for display
	plain := fmt.Sprintf("  %-26s %10.0f ops/sec %8.0f ns", displayName, opsPerSec, nsPerOp)
	padded := padLine(plain)

	// Now colorize the padded string
	colored := fmt.Sprintf("  %-26s %s%10.0f%s ops/sec %s%8.0f%s ns",
		displayName,
		colorGreen, opsPerSec, colorReset,
		colorYellow, nsPerOp, colorReset)

	// Calculate how much padding we added
	extraPad := len(padded) - len(plain)
	if extraPad > 0 {
		colored += strings.Repeat(" ", extraPad)
	}

	fmt.Println(colorDim + "│" + colorReset + colored + colorDim + "│" + colorReset)
}

func padLine(content string) string {
	if len(content) >= boxWidth {
		return content[:boxWidth]
	}
	return content + strings.Repeat(" ", boxWidth-len(content))
}

func printHeader(title string) {
	fmt.Println(colorDim + "┌" + line + "┐" + colorReset)
	printTitleRow("  " + title)
	fmt.Println(colorDim + "├" + line + "┤" + colorReset)
}

func printFooter() {
	fmt.Println(colorDim + "└" + line + "┘" + colorReset)
}

func printTitleRow(content string) {
	fmt.Println(colorDim + "│" + colorReset + colorCyan + padLine(content) + colorReset + colorDim + "│" + colorReset)
}

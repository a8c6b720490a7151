package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kerem-kaynak/wordfreq/pkg/tokenizer"
	"github.com/kerem-kaynak/wordfreq/pkg/trie"
)

func main() {
	stopWords := flag.String("stopwords", "", "file of words to ignore")
	top := flag.Int("top", 0, "print only the n most frequent words")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: tokenize [flags] [text]")
		fmt.Fprintln(flag.CommandLine.Output(), "       tokenize [flags] < file   (count words read from stdin)")
		flag.PrintDefaults()
	}
	flag.Parse()

	tok, err := tokenizer.NewTokenizer(tokenizer.Config{StopWords: *stopWords})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tokenizer: %v\n", err)
		os.Exit(1)
	}
	defer tok.Close()

	// If text provided as argument, tokenize and exit
	if flag.NArg() > 0 {
		words := tok.Tokenize(strings.Join(flag.Args(), " "))
		output, _ := json.Marshal(words)
		fmt.Println(string(output))
		return
	}

	counts := trie.New()
	scanner := tokenizer.NewStreamScanner(tok)
	if err := scanner.Run(context.Background(), tokenizer.NewReaderSource(os.Stdin, 0), counts); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
		os.Exit(1)
	}

	if *top > 0 {
		output, _ := json.Marshal(counts.Top(*top))
		fmt.Println(string(output))
		return
	}

	result := make(map[string]uint64)
	counts.Walk(func(word string, count uint64) bool {
		result[word] = count
		return true
	})
	output, _ := json.Marshal(result)
	fmt.Println(string(output))
}

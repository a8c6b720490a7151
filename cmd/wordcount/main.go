package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kerem-kaynak/wordfreq/pkg/catalog"
	"github.com/kerem-kaynak/wordfreq/pkg/ingest"
	"github.com/kerem-kaynak/wordfreq/pkg/tokenizer"
	"github.com/kerem-kaynak/wordfreq/pkg/trie"
)

// wordCounter is satisfied by both *trie.Trie and *trie.Locked.
type wordCounter interface {
	tokenizer.Counter
	NodeCount() int
	Top(n int) []trie.Entry
}

func main() {
	url := flag.String("url", getEnv("WORDFREQ_CATALOG_URL", catalog.DefaultURL), "first catalog page")
	stopWords := flag.String("stopwords", getEnv("WORDFREQ_STOPWORDS", ""), "file of words to ignore")
	workers := flag.Int("workers", getEnvInt("WORDFREQ_WORKERS", 1), "documents processed at once")
	cacheSize := flag.Int("cache", getEnvInt("WORDFREQ_CACHE_SIZE", 0), "hot-word cache entries (0 disables)")
	top := flag.Int("top", 20, "number of most frequent words to print")
	halt := flag.Bool("halt-on-abort", false, "stop at the first failed document")
	foldAccents := flag.Bool("fold-accents", false, "count accented letters as their base letter")
	stem := flag.Bool("stem", false, "count English word stems")
	logLevel := flag.String("log-level", getEnv("WORDFREQ_LOG_LEVEL", "info"), "debug, info, warn or error")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	tok, err := tokenizer.NewTokenizer(tokenizer.Config{
		StopWords: *stopWords,
		Normalizers: tokenizer.NormalizerConfig{
			FoldAccents: *foldAccents,
			StemEnglish: *stem,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tokenizer: %v\n", err)
		os.Exit(1)
	}
	defer tok.Close()

	counts := trie.NewCached(*cacheSize)
	var counter wordCounter = counts
	if *workers > 1 {
		counter = trie.NewLocked(counts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib := catalog.New(*url, catalog.WithLogger(logger))
	in := ingest.New(lib, tok, counter,
		ingest.WithLogger(logger),
		ingest.WithWorkers(*workers),
		ingest.WithHaltOnAbort(*halt),
	)

	start := time.Now()
	stats, err := in.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	fmt.Printf("%d documents (%d aborted, %d failed), %d words, %d distinct in %v\n",
		stats.Documents, stats.Aborted, stats.Failed, stats.Words,
		counter.NodeCount(), time.Since(start).Round(time.Millisecond))
	for _, e := range counter.Top(*top) {
		fmt.Printf("%10d %s\n", e.Count, e.Word)
	}

	if err != nil {
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

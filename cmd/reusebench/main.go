// Command reusebench drives a synthetic system-under-learning through a
// reuseoracle.Oracle to exercise the reuse cache and print its telemetry,
// wiring a tree, an oracle and a telemetry window together behind
// flag-driven configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/otterlearn/reusecache/alphabet"
	"github.com/otterlearn/reusecache/obslog"
	"github.com/otterlearn/reusecache/querylog"
	"github.com/otterlearn/reusecache/reuseoracle"
	"github.com/otterlearn/reusecache/reusetree"
	"github.com/otterlearn/reusecache/snapshot"
	badgersnapshot "github.com/otterlearn/reusecache/snapshot/badger"
	"github.com/otterlearn/reusecache/telemetry"
	"github.com/otterlearn/reusecache/word"
)

func splitAndTrim(s, delim string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, delim)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// demoSUL is a synthetic system-under-learning: its state is the number of
// symbols other than the configured resetSymbol it has consumed since the
// last reset. It reports the input it just saw failing whenever it
// consumes resetSymbol, which leaves its state unchanged, making
// resetSymbol both a failure output source and a natural pumping
// candidate for -invariant-inputs.
type demoSUL struct {
	resetSymbol string
}

func (d *demoSUL) ProcessQuery(_ context.Context, query word.Word[string]) (reuseoracle.ProcessResult[int, string], error) {
	out := make(word.Word[string], query.Len())
	state := 0
	for i := 0; i < query.Len(); i++ {
		if query.At(i) != d.resetSymbol {
			state++
		}
		out[i] = d.step(query.At(i), state)
	}
	return reuseoracle.ProcessResult[int, string]{Output: out, NewState: state}, nil
}

func (d *demoSUL) ContinueQuery(_ context.Context, suffix word.Word[string], state int) (reuseoracle.ContinueResult[int, string], error) {
	out := make(word.Word[string], suffix.Len())
	for i := 0; i < suffix.Len(); i++ {
		if suffix.At(i) != d.resetSymbol {
			state++
		}
		out[i] = d.step(suffix.At(i), state)
	}
	return reuseoracle.ContinueResult[int, string]{Output: out, NewState: state, OldInvalidated: true}, nil
}

func (d *demoSUL) step(input string, state int) string {
	if input == d.resetSymbol {
		return "error"
	}
	return fmt.Sprintf("ok-%d", state)
}

func main() {
	alphaFlag := flag.String("alphabet", "a,b,reset", "Comma-separated input alphabet")
	invariantFlag := flag.String("invariant-inputs", "", "Comma-separated inputs that pump once seen")
	resetSymbol := flag.String("reset-symbol", "reset", "Input that the demo SUL reports as a failure output")
	numQueries := flag.Int("queries", 2000, "Number of random queries to answer")
	maxQueryLen := flag.Int("max-query-len", 12, "Maximum length of each random query")
	snapshotDir := flag.String("snapshot-dir", "", "If set, write a final structural snapshot to this BadgerDB directory")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	seed := flag.Int64("seed", 1, "Random seed for the query workload")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	symbols := splitAndTrim(*alphaFlag, ",")
	if len(symbols) == 0 {
		log.Fatal("alphabet must not be empty")
	}
	alpha, err := alphabet.New(symbols...)
	if err != nil {
		log.Fatalf("failed to build alphabet: %v", err)
	}

	var treeOpts []reusetree.Option[int, string, string]
	if invariants := splitAndTrim(*invariantFlag, ","); len(invariants) > 0 {
		treeOpts = append(treeOpts, reusetree.WithInvariantInputs[int, string, string](invariants...))
	}
	treeOpts = append(treeOpts, reusetree.WithFailureOutputs[int, string, string]("error"))

	tree := reusetree.New(alpha, treeOpts...)

	window, err := telemetry.NewWindow(256)
	if err != nil {
		log.Fatalf("failed to build telemetry window: %v", err)
	}

	logStore := querylog.NewMemoryStore(1024)
	defer logStore.Close()

	sul := &demoSUL{resetSymbol: *resetSymbol}
	oracle := reuseoracle.New[int, string, string](alpha, tree, sul,
		reuseoracle.WithLogger[int, string, string](obslog.NewSlogAdapter(logger)),
		reuseoracle.WithTelemetry[int, string, string](window),
		reuseoracle.WithQueryLog[int, string, string](logStore),
	)

	rng := rand.New(rand.NewSource(*seed))
	ctx := context.Background()

	for i := 0; i < *numQueries; i++ {
		length := rng.Intn(*maxQueryLen + 1)
		symbolsOut := make([]string, length)
		for j := 0; j < length; j++ {
			symbolsOut[j] = symbols[rng.Intn(len(symbols))]
		}
		query := word.New(symbolsOut...)

		_, outcome, err := oracle.AnswerQuery(ctx, query)
		if err != nil {
			log.Fatalf("query %d failed: %v", i, err)
		}
		logger.Debug("query dispatched", "index", i, "length", length, "outcome", outcomeString(outcome))
	}

	snap := window.Snapshot()
	total := snap.CacheHits + snap.Resets + snap.Continues
	logger.Info("reusebench summary",
		"total_queries", total,
		"cache_hits", snap.CacheHits,
		"resets", snap.Resets,
		"continues", snap.Continues,
		"nodes", tree.NodeCount(),
	)

	if *snapshotDir != "" {
		sink, err := badgersnapshot.New(&badgersnapshot.Config{DataDir: *snapshotDir})
		if err != nil {
			log.Fatalf("failed to open snapshot sink: %v", err)
		}
		defer sink.Close()

		hashes, err := snapshot.Write[int, string, string](ctx, sink, tree)
		if err != nil {
			log.Fatalf("failed to write snapshot: %v", err)
		}
		logger.Info("wrote structural snapshot", "nodes", len(hashes), "dir", *snapshotDir)
	}
}

func outcomeString(o reuseoracle.Outcome) string {
	switch o {
	case reuseoracle.OutcomeCacheHit:
		return "cache-hit"
	case reuseoracle.OutcomeReset:
		return "reset"
	case reuseoracle.OutcomeContinue:
		return "continue"
	default:
		return "unknown"
	}
}

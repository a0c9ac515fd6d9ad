// Package input consolidates target acquisition. Targets arrive inline,
// from a list file, or piped through stdin, and are streamed in that
// order with blank lines, comments and duplicates dropped.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/httpeek/httpeek/pkg/defaults"
)

// TargetSource consolidates all target input methods.
type TargetSource struct {
	URLs     []string // from -u flags (repeated or comma-separated)
	ListFile string   // from -l flag
	Stdin    bool     // read piped stdin when set
}

// Stream emits target lines lazily so that million-line lists do not
// have to sit in memory behind a slow scan. Lines are trimmed, comment
// and blank lines skipped, and duplicates dropped. The channel closes
// when all sources are drained or ctx is cancelled.
//
// The list file is opened eagerly so a bad -l path fails before any
// probing starts.
func (ts *TargetSource) Stream(ctx context.Context) (<-chan string, error) {
	var file *os.File
	if ts.ListFile != "" {
		f, err := os.Open(ts.ListFile)
		if err != nil {
			return nil, fmt.Errorf("open target list: %w", err)
		}
		file = f
	}

	out := make(chan string, defaults.ChannelSmall)
	go func() {
		defer close(out)
		if file != nil {
			defer file.Close()
		}

		seen := make(map[string]bool)
		emit := func(line string) bool {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				return true
			}
			if seen[line] {
				return true
			}
			seen[line] = true
			select {
			case out <- line:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for _, u := range ts.URLs {
			if !emit(u) {
				return
			}
		}
		if file != nil {
			if !scanInto(file, emit) {
				return
			}
		}
		if ts.Stdin && stdinIsPipe() {
			scanInto(os.Stdin, emit)
		}
	}()

	return out, nil
}

// GetTargets collects the whole stream into a slice. Convenient for
// small lists and for counting totals up front.
func (ts *TargetSource) GetTargets(ctx context.Context) ([]string, error) {
	ch, err := ts.Stream(ctx)
	if err != nil {
		return nil, err
	}
	var targets []string
	for t := range ch {
		targets = append(targets, t)
	}
	return targets, nil
}

// Empty reports whether no input source was configured at all.
func (ts *TargetSource) Empty() bool {
	return len(ts.URLs) == 0 && ts.ListFile == "" && !ts.Stdin
}

func scanInto(r io.Reader, emit func(string) bool) bool {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, defaults.BufferSmall), defaults.BufferLarge)
	for scanner.Scan() {
		if !emit(scanner.Text()) {
			return false
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("target stream truncated", slog.String("error", err.Error()))
	}
	return true
}

func stdinIsPipe() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

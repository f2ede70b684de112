// Package progress reports how many bytes a long running codec operation has
// consumed. A Tracker prints a line at most once a second from its own
// goroutine; workers only bump an atomic counter.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Tracker counts processed bytes and periodically prints them.
type Tracker struct {
	processed atomic.Uint64

	mu       sync.Mutex
	total    uint64
	label    string
	out      io.Writer
	interval time.Duration
	testMode bool
	running  bool
	done     chan struct{}
	finished chan struct{}
}

// New creates a Tracker writing to out. A nil out discards all output.
func New(out io.Writer) *Tracker {
	if out == nil {
		out = io.Discard
	}
	return &Tracker{out: out, interval: 250 * time.Millisecond}
}

// SetOutput redirects progress lines. A nil w discards them.
func (t *Tracker) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out = w
}

// SetTestMode switches to terse output that only reports quarter marks.
func (t *Tracker) SetTestMode(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.testMode = enabled
}

// Start begins tracking an operation over size bytes. Calling Start on a
// running Tracker does nothing.
func (t *Tracker) Start(label string, size uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.processed.Store(0)
	t.total = max(size, 1)
	t.label = label
	t.done = make(chan struct{})
	t.finished = make(chan struct{})
	t.running = true
	go t.report(t.out, t.testMode, t.done, t.finished)
}

// Stop ends tracking and waits for the final line to be printed.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	close(t.done)
	t.running = false
	finished := t.finished
	t.mu.Unlock()
	<-finished
}

// AddBytes adds processed bytes to the counter. Safe for concurrent use.
func (t *Tracker) AddBytes(n uint64) {
	if n > 0 {
		t.processed.Add(n)
	}
}

// Processed returns the bytes counted since Start.
func (t *Tracker) Processed() uint64 {
	return t.processed.Load()
}

func (t *Tracker) report(out io.Writer, testMode bool, done, finished chan struct{}) {
	defer close(finished)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.mu.Lock()
	total, label := t.total, t.label
	t.mu.Unlock()

	var prevBytes uint64
	var prevPercentage float64
	start := time.Now()
	lastOutput := start

	if testMode {
		fmt.Fprintf(out, "[TEST] Progress tracking initialized\n")
	}

	for {
		select {
		case <-ticker.C:
			current := t.processed.Load()
			rate := uint64(float64(current-prevBytes) / t.interval.Seconds())
			prevBytes = current
			percentage := float64(current) / float64(total) * 100

			if testMode {
				if mark := crossedQuarter(prevPercentage, percentage); mark > 0 {
					fmt.Fprintf(out, "[TEST] Processing at %d%%\n", mark)
				}
				prevPercentage = percentage
				continue
			}

			if time.Since(lastOutput) >= time.Second || percentage-prevPercentage >= 10 {
				lastOutput = time.Now()
				fmt.Fprintf(out, "%s: %s of %s (%.1f%%) | Rate: %s/s | ETA: %s\n",
					label, FormatSize(current), FormatSize(total), percentage,
					FormatSize(rate), eta(total-min(current, total), rate))
				prevPercentage = percentage
			}
		case <-done:
			if !testMode {
				elapsed := max(time.Since(start).Seconds(), 0.001)
				processed := t.processed.Load()
				fmt.Fprintf(out, "%s: completed %s in %.1f seconds (avg rate: %s/s)\n",
					label, FormatSize(processed), elapsed, FormatSize(uint64(float64(processed)/elapsed)))
			}
			return
		}
	}
}

// crossedQuarter returns the highest 25% mark passed between prev and cur, or 0.
func crossedQuarter(prev, cur float64) int {
	for _, mark := range []int{100, 75, 50, 25} {
		if cur >= float64(mark) && prev < float64(mark) {
			return mark
		}
	}
	return 0
}

func eta(remaining, rate uint64) string {
	if rate == 0 {
		return "calculating..."
	}
	secs := float64(remaining) / float64(rate)
	switch {
	case secs < 60:
		return fmt.Sprintf("%.0f seconds", secs)
	case secs < 3600:
		return fmt.Sprintf("%.1f minutes", secs/60)
	}
	return fmt.Sprintf("%.1f hours", secs/3600)
}

// FormatSize returns a human-readable size string.
func FormatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// defaultTracker backs the package level functions. It prints to stdout.
var defaultTracker = New(os.Stdout)

// Default returns the Tracker used by the package level functions.
func Default() *Tracker {
	return defaultTracker
}

// AddBytes adds processed bytes to the default tracker.
func AddBytes(n uint64) {
	defaultTracker.AddBytes(n)
}

// SetOutput redirects the default tracker.
func SetOutput(w io.Writer) {
	defaultTracker.SetOutput(w)
}

package core

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Terminal formatting for the step-by-step test reports.
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

var (
	currentIndent = 0
	indentSize    = 2
	// reportOut is where reports go. Set to nil to silence them.
	reportOut = os.Stdout
)

func printf(format string, args ...any) {
	if reportOut != nil {
		fmt.Fprintf(reportOut, format, args...)
	}
}

// ReportStart prints a header for the test run
func ReportStart(title string) {
	divider := strings.Repeat("═", 60)
	printf("\n%s%s%s\n", colorBold, divider, colorReset)
	printf("%s%s TZ TEST: %s %s\n", colorBold, colorCyan, title, colorReset)
	printf("%s%s%s\n\n", colorBold, divider, colorReset)
}

// ReportEnd prints a footer for the test run
func ReportEnd(success bool, duration time.Duration) {
	divider := strings.Repeat("═", 60)
	printf("\n%s%s%s\n", colorBold, divider, colorReset)
	if success {
		printf("%s%s✓ Test completed successfully in %.1f seconds%s\n", colorBold, colorGreen, duration.Seconds(), colorReset)
	} else {
		printf("%s%s✗ Test failed after %.1f seconds%s\n", colorBold, colorRed, duration.Seconds(), colorReset)
	}
	printf("%s%s%s\n\n", colorBold, divider, colorReset)
}

// StartSection begins a new test section with a header
func StartSection(name string) {
	printf("\n%s%s▶ %s%s\n", colorBold, colorBlue, name, colorReset)
	currentIndent++
}

// EndSection completes a test section
func EndSection() {
	currentIndent--
	printf("\n")
}

func line(color, mark, msg string) {
	printf("%s%s%s %s%s\n", strings.Repeat(" ", currentIndent*indentSize), color, mark, msg, colorReset)
}

// Action describes a test action being performed
func Action(msg string) { line(colorCyan, "→", msg) }

// Info provides information about the test state
func Info(msg string) { line(colorBlue, "•", msg) }

// Success reports a successful test assertion
func Success(msg string) { line(colorGreen, "✓", msg) }

// Error reports a test error
func Error(msg string) { line(colorRed, "✗", msg) }

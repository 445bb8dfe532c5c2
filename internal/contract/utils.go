package contract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	LeaderColor  = color.New(color.FgGreen, color.Bold) // leading option in a contest
	WarnColor    = color.New(color.FgYellow)            // overvote/undervote accents
	WriteInColor = color.New(color.FgCyan)              // write-in rows
	ContestColor = color.New(color.FgWhite, color.Bold) // contest header rows
)

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarning logs a warning.
func LogWarning(msg string) {
	fmt.Fprintf(os.Stderr, "⚠️  %s\n", msg)
}

// LogInfo logs an informational message.
func LogInfo(msg string) {
	fmt.Fprintf(os.Stderr, "ℹ️  %s\n", msg)
}

// SelectOutputFile opens the requested output file for writing, or returns
// stdout when no file is requested.
func SelectOutputFile(outputFile string) (*os.File, error) {
	if outputFile == "" {
		return os.Stdout, nil
	}
	file, err := os.Create(outputFile)
	if err != nil {
		return nil, fmt.Errorf("cannot create output file %q: %w", outputFile, err)
	}
	return file, nil
}

// GetStoreDBFilePath returns the default path of the SQLite tally store.
func GetStoreDBFilePath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}
	dir := filepath.Join(cacheDir, "canvass")
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, "tallies.db")
}

// TruncateLabel shortens a label to fit a table column, keeping the tail
// which carries the distinguishing part of long contest titles.
func TruncateLabel(label string, maxWidth int) string {
	if maxWidth <= 0 || len(label) <= maxWidth {
		return label
	}
	if maxWidth <= 3 {
		return label[:maxWidth]
	}
	return "..." + label[len(label)-(maxWidth-3):]
}

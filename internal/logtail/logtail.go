// Package logtail reads the most recent lines of the log file for the dashboard.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// NoLogs is the single line returned when the log file does not exist yet.
const NoLogs = "No logs available yet"

// maxLineSize bounds a single log line; a longer line fails the read.
const maxLineSize = 1 << 20

// Tail returns the last n lines of the file at path, oldest first.
func Tail(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{NoLogs}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	lines, err := Last(f, n)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return lines, nil
}

// Last returns the final n lines read from r, oldest first. Memory use is
// bounded by n regardless of the input size.
func Last(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	ring := make([]string, n)
	count := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		ring[count%n] = sc.Text()
		count++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if count <= n {
		return ring[:count], nil
	}
	start := count % n
	out := make([]string, 0, n)
	out = append(out, ring[start:]...)
	out = append(out, ring[:start]...)
	return out, nil
}

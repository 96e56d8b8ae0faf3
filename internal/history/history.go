// Package history reads the shared prompt log and scopes it to sessions.
package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Record is one submitted prompt, in the shape the upstream CLI appends to
// history.jsonl.
type Record struct {
	Display        string          `json:"display"`
	PastedContents json.RawMessage `json:"pastedContents,omitempty"`
	Timestamp      int64           `json:"timestamp"`
	Project        string          `json:"project"`
	SessionID      string          `json:"sessionId,omitempty"`
}

// LoadFile reads every record from the log at path, preserving file order.
// A missing file is an empty log, not an error.
func LoadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	return Load(file)
}

// Load reads records from r, skipping blank and malformed lines. The log is
// appended to concurrently by running sessions, so a torn trailing line is
// expected and dropped like any other malformed line.
func Load(r io.Reader) ([]Record, error) {
	scanner := newScanner(r)

	var records []Record
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // Skip malformed lines
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("scan history: %w", err)
	}

	return records, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Allow large pasted inputs
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}

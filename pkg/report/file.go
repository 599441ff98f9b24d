package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonlRecord struct {
	Type string `json:"type"`
	Record
}

type jsonlSummary struct {
	Type      string         `json:"type"`
	Mode      string         `json:"mode"`
	StartedAt string         `json:"started_at"`
	ElapsedMs int64          `json:"elapsed_ms"`
	Counts    map[string]int `json:"counts"`
}

// WriteJSONL appends the run to path in JSONL format, one object per
// operation and a trailing summary object. Appending lets scheduled
// runs accumulate into a single machine-readable log.
func WriteJSONL(path string, s RunSummary) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	for _, r := range s.Records {
		if err := writeLine(writer, jsonlRecord{Type: "operation", Record: r}); err != nil {
			return err
		}
	}

	err = writeLine(writer, jsonlSummary{
		Type:      "summary",
		Mode:      s.Mode,
		StartedAt: s.StartedAt.Format(time.RFC3339),
		ElapsedMs: s.ElapsedMs,
		Counts:    s.Counts,
	})
	if err != nil {
		return err
	}

	return writer.Flush()
}

func writeLine(writer *bufio.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

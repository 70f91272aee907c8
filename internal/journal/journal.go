// Package journal records completed kiosk sessions in a TSV file.
// Uses atomic writes (temp+rename) to prevent data corruption.
package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marquee/internal/config"
)

// TSV columns: started, ended, locator, kind, player, reason
const numColumns = 6

// Record is one completed (or aborted) kiosk session.
type Record struct {
	Started time.Time
	Ended   time.Time
	Locator string
	Kind    string
	Player  string
	Reason  string // "escape", "stopped", "launch-failed", ...
}

// Load reads the journal and returns all records, oldest first.
func Load() ([]Record, error) {
	path, err := config.JournalPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			continue // Skip malformed lines
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return records, nil
}

// Append adds a record to the journal.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func Append(rec Record) error {
	path, err := config.JournalPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	records, _ := Load()
	records = append(records, rec)

	tmpFile, err := os.CreateTemp(dir, "journal-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writer := bufio.NewWriter(tmpFile)
	for _, r := range records {
		if _, err := writer.WriteString(formatLine(r) + "\n"); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing journal: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing journal: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming journal file: %w", err)
	}
	return nil
}

// FormatForDisplay creates one display line per record, newest first.
func FormatForDisplay(records []Record) []string {
	items := make([]string, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		dur := r.Ended.Sub(r.Started).Round(time.Second)
		items = append(items, fmt.Sprintf("%s  %-8s %-10s %s (%s, %s)",
			r.Started.Format("2006-01-02 15:04"), r.Kind, r.Player, r.Locator, dur, r.Reason))
	}
	return items
}

func parseLine(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < numColumns {
		return Record{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(fields))
	}

	started, err := time.Parse(time.RFC3339, fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("parsing start time: %w", err)
	}
	ended, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("parsing end time: %w", err)
	}

	return Record{
		Started: started,
		Ended:   ended,
		Locator: fields[2],
		Kind:    fields[3],
		Player:  fields[4],
		Reason:  fields[5],
	}, nil
}

func formatLine(r Record) string {
	return strings.Join([]string{
		r.Started.Format(time.RFC3339),
		r.Ended.Format(time.RFC3339),
		r.Locator,
		r.Kind,
		r.Player,
		r.Reason,
	}, "\t")
}

// package formatter exports migration history to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/shared"
)

// Format names an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
	JSON     Format = "json"
)

// ParseFormat accepts the format names used on the command line. "md" and "txt" are aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt", "":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return "md"
	case Text:
		return "txt"
	default:
		return string(f)
	}
}

const timeLayout = time.RFC3339

// Export renders jobs in the given format.
func Export(jobs []*models.MigrationJob, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(jobs)
	case Markdown:
		return ExportToMarkdown(jobs)
	case Text:
		return ExportToText(jobs)
	case JSON:
		return ExportToJSON(jobs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToCSV converts jobs to CSV with columns: Sequence, ID, Status, Source, Sites, Migrated, Failed, Started, Completed, Duration, Error
func ExportToCSV(jobs []*models.MigrationJob) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "Status", "Source", "Sites", "Migrated", "Failed", "Started", "Completed", "Duration", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, job := range jobs {
		record := []string{
			strconv.Itoa(job.Sequence()),
			job.ID(),
			string(job.Status()),
			job.SourcePath(),
			strconv.Itoa(job.SitesTotal()),
			strconv.Itoa(job.SitesMigrated()),
			strconv.Itoa(job.SitesFailed()),
			formatTime(job.StartedAt()),
			formatTime(job.CompletedAt()),
			formatDuration(job),
			job.ErrorMessage(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders jobs as a Markdown table with a summary line.
func ExportToMarkdown(jobs []*models.MigrationJob) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Migration history\n\n")
	succeeded, failed := tally(jobs)
	buf.WriteString(fmt.Sprintf("**Attempts**: %d (%d succeeded, %d failed)\n\n", len(jobs), succeeded, failed))

	if len(jobs) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Status | Sites | Started | Duration | Error |\n")
	buf.WriteString("|---|--------|-------|---------|----------|-------|\n")
	for _, job := range jobs {
		buf.WriteString(fmt.Sprintf("| %d | %s | %d/%d | %s | %s | %s |\n",
			job.Sequence(),
			job.Status(),
			job.SitesMigrated(),
			job.SitesTotal(),
			formatTime(job.StartedAt()),
			formatDuration(job),
			escapeCell(job.ErrorMessage()),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts jobs to plain text, one attempt per line
func ExportToText(jobs []*models.MigrationJob) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Migrations: %d\n\n", len(jobs)))

	for _, job := range jobs {
		buf.WriteString(fmt.Sprintf("#%d %s %d/%d %s",
			job.Sequence(),
			job.Status(),
			job.SitesMigrated(),
			job.SitesTotal(),
			shared.Plural(job.SitesTotal(), "site", "sites"),
		))
		if started := formatTime(job.StartedAt()); started != "" {
			buf.WriteString(" at " + started)
		}
		if msg := job.ErrorMessage(); msg != "" {
			buf.WriteString(": " + msg)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

type jobJSON struct {
	Sequence    int        `json:"sequence"`
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Source      string     `json:"source"`
	Sites       int        `json:"sites"`
	Migrated    int        `json:"migrated"`
	Failed      int        `json:"failed"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// ExportToJSON renders jobs as an indented JSON array
func ExportToJSON(jobs []*models.MigrationJob) ([]byte, error) {
	out := make([]jobJSON, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, jobJSON{
			Sequence:    job.Sequence(),
			ID:          job.ID(),
			Status:      string(job.Status()),
			Source:      job.SourcePath(),
			Sites:       job.SitesTotal(),
			Migrated:    job.SitesMigrated(),
			Failed:      job.SitesFailed(),
			StartedAt:   job.StartedAt(),
			CompletedAt: job.CompletedAt(),
			Error:       job.ErrorMessage(),
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes an export, creating parent directories as needed.
//
// Defaults to history.{ext} when path is empty and returns the path written.
func WriteFile(jobs []*models.MigrationJob, f Format, path string) (string, error) {
	if path == "" {
		path = "history." + f.Extension()
	}

	data, err := Export(jobs, f)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

func tally(jobs []*models.MigrationJob) (succeeded, failed int) {
	for _, job := range jobs {
		switch job.Status() {
		case models.JobSucceeded:
			succeeded++
		case models.JobFailed:
			failed++
		}
	}
	return succeeded, failed
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func formatDuration(job *models.MigrationJob) string {
	d := job.Duration()
	if d == 0 {
		return ""
	}
	return d.Round(time.Millisecond).String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/shared"
	th "github.com/desertthunder/handoff/internal/testing"
)

func testJobs() []*models.MigrationJob {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := models.NewMigrationJob(1, "legacy.db")
	ok.SetID("job-1")
	ok.SetSitesTotal(2)
	ok.SetSitesMigrated(2)
	ok.Start(start)
	ok.Finish(start.Add(1500*time.Millisecond), nil)

	bad := models.NewMigrationJob(2, "legacy.db")
	bad.SetID("job-2")
	bad.SetSitesTotal(1)
	bad.SetSitesFailed(1)
	bad.Start(start.Add(time.Minute))
	bad.Finish(start.Add(time.Minute+time.Second), errors.New("network | down"))

	pending := models.NewMigrationJob(3, "legacy.db")
	pending.SetID("job-3")

	return []*models.MigrationJob{ok, bad, pending}
}

func TestExporters(t *testing.T) {
	jobs := testJobs()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(jobs)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Sequence,ID,Status,Source,Sites,Migrated,Failed,Started,Completed,Duration,Error") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,job-1,succeeded,legacy.db,2,2,0,2026-03-01T12:00:00Z,2026-03-01T12:00:01Z,1.5s,") {
			t.Errorf("CSV missing succeeded row, got: %s", output)
		}
		if !strings.Contains(output, "3,job-3,pending,legacy.db,0,0,0,,,,") {
			t.Errorf("CSV missing pending row, got: %s", output)
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 4 {
			t.Errorf("expected 4 lines, got %d", len(lines))
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(jobs)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "# Migration history") {
			t.Error("Markdown missing title")
		}
		if !strings.Contains(output, "**Attempts**: 3 (1 succeeded, 1 failed)") {
			t.Errorf("Markdown missing summary, got: %s", output)
		}
		if !strings.Contains(output, `network \| down`) {
			t.Errorf("Markdown should escape pipes, got: %s", output)
		}

		t.Run("empty", func(t *testing.T) {
			data, _ := ExportToMarkdown(nil)
			if strings.Contains(string(data), "| # |") {
				t.Error("expected no table for empty history")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(jobs)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"Migrations: 3",
			"#1 succeeded 2/2 sites at 2026-03-01T12:00:00Z",
			"#2 failed 0/1 site at 2026-03-01T12:01:00Z: network | down",
			"#3 pending 0/0 sites\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(jobs)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(decoded))
		}
		if decoded[1]["error"] != "network | down" {
			t.Errorf("unexpected error field %v", decoded[1]["error"])
		}
		if _, ok := decoded[2]["started_at"]; ok {
			t.Error("expected started_at omitted for pending job")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{in: "csv", want: CSV, ext: "csv"},
		{in: "Markdown", want: Markdown, ext: "md"},
		{in: "md", want: Markdown, ext: "md"},
		{in: "txt", want: Text, ext: "txt"},
		{in: "", want: Text, ext: "txt"},
		{in: "json", want: JSON, ext: "json"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want || got.Extension() != tt.ext {
				t.Errorf("expected %s (.%s), got %s (.%s)", tt.want, tt.ext, got, got.Extension())
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if _, err := Export(nil, Format("xml")); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriteFile(t *testing.T) {
	t.Run("WithCustomPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "out.csv")
		written, err := WriteFile(testJobs(), CSV, path)
		if err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "Sequence,") {
			t.Errorf("unexpected content: %s", content)
		}
	})

	t.Run("WithDefaultPath", func(t *testing.T) {
		t.Chdir(t.TempDir())
		written, err := WriteFile(testJobs(), Markdown, "")
		if err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if written != "history.md" {
			t.Errorf("expected history.md, got %s", written)
		}
		th.AssertFileExists(t, written)
	})

	t.Run("UnwritablePath", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "file")
		if _, err := WriteFile(nil, Text, file); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := WriteFile(nil, Text, filepath.Join(file, "nested.txt")); err == nil {
			t.Error("expected error writing below a file")
		}
	})
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/handoff/internal/models"
	"github.com/desertthunder/handoff/internal/repositories"
	"github.com/desertthunder/handoff/internal/shared"
	tu "github.com/desertthunder/handoff/internal/testing"
	"github.com/desertthunder/handoff/internal/wizard"
	"github.com/urfave/cli/v3"
)

// writeConfig writes a config.toml in dir pointing both databases into dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`
[source]
path = %q

[database]
path = %q
max_open_conns = 1
max_idle_conns = 1

[engine]
workers = 2
rate_limit = 100.0

[log]
level = "debug"
file = %q
`, filepath.Join(dir, "legacy.db"), filepath.Join(dir, "handoff.db"), filepath.Join(dir, "handoff.log"))

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// newTestRunner logs to a shared writer because the engine, wizard and drive loop log from different goroutines.
func newTestRunner() (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{
		Logger: shared.NewLogger(&tu.SyncWriter{}),
		Output: output,
	}), output
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "handoff", Commands: r.register()}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Run(ctx, append([]string{"handoff"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "wizard", "migrate", "serve", "history"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("command %d: expected %s, got %s", i, want[i], cmd.Name)
			}
		}
	})
}

func TestConfigure(t *testing.T) {
	t.Run("missing explicit config is an error", func(t *testing.T) {
		runner, _ := newTestRunner()
		err := run(t, runner, "history", "-c", filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("invalid config is an error", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n"), 0644); err != nil {
			t.Fatal(err)
		}

		runner, _ := newTestRunner()
		if err := run(t, runner, "history", "-c", path); err == nil {
			t.Error("expected error for invalid log level")
		}
	})

	t.Run("loads config from flag", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir)

		runner, _ := newTestRunner()
		if err := run(t, runner, "history", "-c", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Source.Path != filepath.Join(dir, "legacy.db") {
			t.Errorf("expected source path from config, got %s", runner.config.Source.Path)
		}
		if runner.config.Engine.Workers != 2 {
			t.Errorf("expected 2 workers, got %d", runner.config.Engine.Workers)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("database creates config and schema", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		t.Chdir(dir)

		runner, _ := newTestRunner()
		if err := run(t, runner, "setup", "database", "-c", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		tu.AssertFileExists(t, filepath.Join(dir, "handoff.db"))
	})

	t.Run("fixture seeds the legacy database", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir)

		runner, output := newTestRunner()
		if err := run(t, runner, "setup", "fixture", "-c", path, "--sites", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Sites: 2") {
			t.Errorf("expected site count in output, got %q", output.String())
		}

		store, err := repositories.OpenLegacyStore(filepath.Join(dir, "legacy.db"))
		if err != nil {
			t.Fatalf("failed to open fixture: %v", err)
		}
		defer store.Close()

		sites, err := store.ReadSites(context.Background())
		if err != nil {
			t.Fatalf("failed to read sites: %v", err)
		}
		if len(sites) != 2 {
			t.Errorf("expected 2 sites, got %d", len(sites))
		}
	})

	t.Run("fixture refuses to overwrite without force", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir)

		runner, _ := newTestRunner()
		if err := run(t, runner, "setup", "fixture", "-c", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		err := run(t, runner, "setup", "fixture", "-c", path)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}

		if err := run(t, runner, "setup", "fixture", "-c", path, "--force"); err != nil {
			t.Errorf("expected --force to overwrite, got %v", err)
		}
	})

	t.Run("fixtureData", func(t *testing.T) {
		tests := []struct {
			n    int
			want int
		}{
			{0, len(fixtureSites)},
			{-1, len(fixtureSites)},
			{1, 1},
			{99, len(fixtureSites)},
		}
		for _, tt := range tests {
			account, sites := fixtureData(tt.n)
			if len(sites) != tt.want {
				t.Errorf("fixtureData(%d): expected %d sites, got %d", tt.n, tt.want, len(sites))
			}
			if account.AccessToken == "" {
				t.Error("expected fixture account to carry a token")
			}
		}
	})
}

func TestMigrate(t *testing.T) {
	t.Run("runs the whole flow and records history", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir)

		runner, output := newTestRunner()
		if err := run(t, runner, "setup", "fixture", "-c", path); err != nil {
			t.Fatalf("fixture failed: %v", err)
		}
		output.Reset()

		if err := run(t, runner, "migrate", "-c", path, "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var summary map[string]any
		if err := json.Unmarshal(output.Bytes(), &summary); err != nil {
			t.Fatalf("expected JSON summary, got %q: %v", output.String(), err)
		}
		if summary["status"] != string(models.JobSucceeded) {
			t.Errorf("expected succeeded, got %v", summary["status"])
		}
		if summary["migrated"] != float64(len(fixtureSites)) {
			t.Errorf("expected %d migrated, got %v", len(fixtureSites), summary["migrated"])
		}

		output.Reset()
		if err := run(t, runner, "history", "-c", path, "--format", "csv"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one row, got %q", output.String())
		}
		if !strings.Contains(lines[1], "succeeded") {
			t.Errorf("expected succeeded row, got %q", lines[1])
		}
	})

	t.Run("missing source fails after retries", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir)

		runner, _ := newTestRunner()
		err := run(t, runner, "migrate", "-c", path, "--retries", "1")
		if !errors.Is(err, shared.ErrSourceMissing) {
			t.Fatalf("expected ErrSourceMissing, got %v", err)
		}

		output := &bytes.Buffer{}
		runner.output = output
		if err := run(t, runner, "history", "-c", path, "--status", "failed"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output.String(), "Migrations: 2") {
			t.Errorf("expected two failed attempts, got %q", output.String())
		}
	})

	t.Run("history rejects unknown status", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir)

		runner, _ := newTestRunner()
		err := run(t, runner, "history", "-c", path, "--status", "sideways")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("history writes to a file", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir)
		out := filepath.Join(dir, "exports", "history.md")

		runner, output := newTestRunner()
		if err := run(t, runner, "history", "-c", path, "--format", "md", "-o", out); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, out)
		if !strings.Contains(output.String(), "Wrote 0 jobs") {
			t.Errorf("expected write confirmation, got %q", output.String())
		}
	})
}

func TestDrive(t *testing.T) {
	newWizard := func(t *testing.T, engine wizard.Engine) *wizard.Wizard {
		t.Helper()
		w := wizard.New(wizard.Options{Engine: engine})
		t.Cleanup(w.Close)
		return w
	}

	t.Run("advances through every screen", func(t *testing.T) {
		engine := tu.NewStubEngine(
			wizard.InProgress{AvatarURL: "https://example.com/a.png", Sites: []wizard.SiteRef{1, 2}},
			wizard.Succeeded{},
		)
		w := newWizard(t, engine)
		runner, _ := newTestRunner()

		if err := w.Start(); err != nil {
			t.Fatal(err)
		}
		if err := runner.drive(context.Background(), w, 0); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := w.Screen().(wizard.DoneScreen); !ok {
			t.Errorf("expected Done screen, got %s", w.Screen().Step())
		}
	})

	t.Run("retries a failure", func(t *testing.T) {
		var calls atomic.Int32
		engine := wizard.EngineFunc(func(ctx context.Context, sw wizard.StatusWriter) error {
			if calls.Add(1) == 1 {
				sw.WriteStatus(wizard.Failed{Err: shared.ErrNetwork})
				return shared.ErrNetwork
			}
			sw.WriteStatus(wizard.InProgress{Sites: []wizard.SiteRef{1}})
			sw.WriteStatus(wizard.Succeeded{})
			return nil
		})
		w := newWizard(t, engine)
		runner, _ := newTestRunner()

		if err := w.Start(); err != nil {
			t.Fatal(err)
		}
		if err := runner.drive(context.Background(), w, 1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := calls.Load(); got != 2 {
			t.Errorf("expected 2 engine calls, got %d", got)
		}
	})

	t.Run("gives up without retries", func(t *testing.T) {
		engine := tu.NewStubEngine(wizard.Failed{Err: shared.ErrNoSites})
		w := newWizard(t, engine)
		runner, _ := newTestRunner()

		if err := w.Start(); err != nil {
			t.Fatal(err)
		}
		err := runner.drive(context.Background(), w, 0)
		if !errors.Is(err, shared.ErrNoSites) {
			t.Errorf("expected ErrNoSites, got %v", err)
		}
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		engine := &tu.StubEngine{Block: true}
		w := newWizard(t, engine)
		runner, _ := newTestRunner()

		if err := w.Start(); err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if err := runner.drive(ctx, w, 0); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}

func TestLegacySource(t *testing.T) {
	dir := t.TempDir()
	src := &legacySource{path: filepath.Join(dir, "legacy.db")}
	defer src.Close()

	if _, err := src.ReadAccount(context.Background()); !errors.Is(err, shared.ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing before the file exists, got %v", err)
	}

	db, err := shared.NewDatabase(src.path)
	if err != nil {
		t.Fatal(err)
	}
	account, sites := fixtureData(1)
	if err := repositories.SeedLegacy(context.Background(), db, account, sites); err != nil {
		t.Fatal(err)
	}
	db.Close()

	got, err := src.ReadAccount(context.Background())
	if err != nil {
		t.Fatalf("expected the store to open once the file exists, got %v", err)
	}
	if got.Username != account.Username {
		t.Errorf("expected %s, got %s", account.Username, got.Username)
	}
}

// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/handoff/internal/wizard"
)

// StubEngine is a test double for [wizard.Engine].
//
// Each call writes Statuses in order. With Block set, the call then waits for its context to be cancelled.
type StubEngine struct {
	Statuses []wizard.Status
	Err      error
	Block    bool

	mu     sync.Mutex
	calls  int
	called chan struct{}
}

func NewStubEngine(statuses ...wizard.Status) *StubEngine {
	return &StubEngine{Statuses: statuses, called: make(chan struct{}, 64)}
}

func (e *StubEngine) TryMigration(ctx context.Context, w wizard.StatusWriter) error {
	e.mu.Lock()
	e.calls++
	statuses := append([]wizard.Status(nil), e.Statuses...)
	e.mu.Unlock()

	for _, s := range statuses {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.WriteStatus(s)
	}

	select {
	case e.called <- struct{}{}:
	default:
	}

	if e.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	return e.Err
}

// SetStatuses replaces what later calls write.
func (e *StubEngine) SetStatuses(statuses ...wizard.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Statuses = statuses
}

// Calls reports how many times TryMigration ran.
func (e *StubEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// WaitCall blocks until one more call has written its statuses.
func (e *StubEngine) WaitCall(t *testing.T) {
	t.Helper()
	select {
	case <-e.called:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for engine call")
	}
}

// StatusRecorder is a [wizard.StatusWriter] that keeps every status written to it.
type StatusRecorder struct {
	mu       sync.Mutex
	statuses []wizard.Status
}

func (r *StatusRecorder) WriteStatus(s wizard.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *StatusRecorder) Statuses() []wizard.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]wizard.Status(nil), r.statuses...)
}

// Last returns the most recent status, or nil.
func (r *StatusRecorder) Last() wizard.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return nil
	}
	return r.statuses[len(r.statuses)-1]
}

// WaitForStep reads the wizard's screen feed until a screen with the given step arrives.
func WaitForStep(t *testing.T, w *wizard.Wizard, step wizard.Step) wizard.Screen {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		if s := w.Screen(); s.Step() == step {
			return s
		}
		select {
		case s, ok := <-w.Screens():
			if !ok {
				t.Fatalf("screen feed closed before %s", step)
			}
			if s.Step() == step {
				return s
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s screen, current %s", step, w.Screen().Step())
		}
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// SyncWriter serializes writes to an underlying buffer so loggers on several goroutines can share it.
type SyncWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *SyncWriter) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

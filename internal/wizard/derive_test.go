package wizard

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"testing"

	"github.com/desertthunder/handoff/internal/shared"
)

func testDeriver() Deriver {
	return Deriver{
		Resolver: SiteResolverFunc(func(ref SiteRef) SiteSummary {
			return SiteSummary{ID: int64(ref), Name: fmt.Sprintf("site-%d", ref)}
		}),
		Avatar: func(url string) string { return url + "?s=96" },
	}
}

func TestDerive(t *testing.T) {
	d := testDeriver()
	progress := InProgress{AvatarURL: "a", Sites: []SiteRef{1, 2}}
	welcome := func(busy bool) Screen {
		return WelcomeScreen{
			AvatarURL: "a?s=96",
			Sites:     []SiteSummary{{ID: 1, Name: "site-1"}, {ID: 2, Name: "site-2"}},
			Busy:      busy,
		}
	}

	tests := []struct {
		name    string
		snap    Snapshot
		want    Screen
		emitted bool
	}{
		{name: "not started", snap: Snapshot{Status: NotStarted{}}, want: LoadingScreen{}, emitted: true},
		{name: "nil status", snap: Snapshot{}, want: LoadingScreen{}, emitted: true},
		{name: "not started ignores flags", snap: Snapshot{Status: NotStarted{}, AdvancedPastWelcome: true, AdvancedPastNotifications: true}, want: LoadingScreen{}, emitted: true},
		{name: "in progress", snap: Snapshot{Status: progress}, want: welcome(false), emitted: true},
		{name: "in progress after continue", snap: Snapshot{Status: progress, AdvancedPastWelcome: true}, want: welcome(true), emitted: true},
		{name: "in progress ignores notifications flag", snap: Snapshot{Status: progress, AdvancedPastWelcome: true, AdvancedPastNotifications: true}, want: welcome(true), emitted: true},
		{name: "succeeded after welcome", snap: Snapshot{Status: Succeeded{}, AdvancedPastWelcome: true}, want: NotificationsScreen{}, emitted: true},
		{name: "succeeded after both", snap: Snapshot{Status: Succeeded{}, AdvancedPastWelcome: true, AdvancedPastNotifications: true}, want: DoneScreen{}, emitted: true},
		{name: "succeeded before welcome", snap: Snapshot{Status: Succeeded{}}, want: nil, emitted: false},
		{name: "succeeded with only notifications", snap: Snapshot{Status: Succeeded{}, AdvancedPastNotifications: true}, want: nil, emitted: false},
		{name: "failed", snap: Snapshot{Status: Failed{Err: errors.New("boom")}}, want: ErrorScreen{Kind: Generic}, emitted: true},
		{name: "failed network error stays generic", snap: Snapshot{Status: Failed{Err: shared.ErrNetwork}, AdvancedPastWelcome: true}, want: ErrorScreen{Kind: Generic}, emitted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Derive(tt.snap)
			if ok != tt.emitted {
				t.Fatalf("expected emitted=%v, got %v", tt.emitted, ok)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}

	t.Run("replay yields identical screens", func(t *testing.T) {
		snap := Snapshot{Status: progress, AdvancedPastWelcome: true}
		first, _ := d.Derive(snap)
		for range 10 {
			again, _ := d.Derive(snap)
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("expected %#v, got %#v", first, again)
			}
		}
	})

	t.Run("without resolver or sizer", func(t *testing.T) {
		got, _ := Deriver{}.Derive(Snapshot{Status: InProgress{AvatarURL: "a", Sites: []SiteRef{7}}})
		want := WelcomeScreen{AvatarURL: "a", Sites: []SiteSummary{{ID: 7}}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %#v, got %#v", want, got)
		}
	})

	t.Run("empty avatar is not resized", func(t *testing.T) {
		got, _ := d.Derive(Snapshot{Status: InProgress{}})
		welcome := got.(WelcomeScreen)
		if welcome.AvatarURL != "" {
			t.Errorf("expected empty avatar, got %q", welcome.AvatarURL)
		}
		if welcome.Sites == nil || len(welcome.Sites) != 0 {
			t.Errorf("expected empty non-nil site list, got %#v", welcome.Sites)
		}
	})
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{name: "nil", err: nil, want: Generic},
		{name: "plain", err: errors.New("boom"), want: Generic},
		{name: "wrapped network sentinel", err: fmt.Errorf("%w: dial", shared.ErrNetwork), want: Networking},
		{name: "net error", err: fmt.Errorf("fetch: %w", timeoutErr{}), want: Networking},
		{name: "no account", err: shared.ErrNoAccount, want: Generic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	steps := map[Step]string{
		StepLoading: "loading", StepWelcome: "welcome", StepNotifications: "notifications",
		StepDone: "done", StepError: "error", Step(99): "step(99)",
	}
	for step, want := range steps {
		if step.String() != want {
			t.Errorf("expected %q, got %q", want, step.String())
		}
	}
	if Networking.String() != "networking" || Generic.String() != "generic" {
		t.Errorf("unexpected failure kind names %q %q", Networking, Generic)
	}
	if RequestHelp.String() != "request_help" || FlowComplete.String() != "flow_complete" {
		t.Errorf("unexpected event names %q %q", RequestHelp, FlowComplete)
	}
}

package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/surface"
	"github.com/Diblo/csgo-league-bot/pkg/types"
)

// recordingPanel captures renders so tests can sync on the session's visible
// progress before feeding the next signal.
type recordingPanel struct {
	renders chan types.PanelView
}

func newRecordingPanel() *recordingPanel {
	return &recordingPanel{renders: make(chan types.PanelView, 64)}
}

func (p *recordingPanel) Render(v types.PanelView) { p.renders <- v }
func (p *recordingPanel) Close()                   {}

// waitTitle waits for a render whose title contains want, skipping others.
func (p *recordingPanel) waitTitle(t *testing.T, want string) types.PanelView {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-p.renders:
			if strings.Contains(v.Title, want) {
				return v
			}
		case <-deadline:
			t.Fatalf("no render with title containing %q", want)
			return types.PanelView{}
		}
	}
}

// settle gives the session's next AwaitChoice time to register with the
// surface actor before a signal is delivered.
func settle() { time.Sleep(20 * time.Millisecond) }

func participants(ids ...string) []draft.Participant {
	out := make([]draft.Participant, len(ids))
	for i, id := range ids {
		out[i] = draft.Participant{ID: id, Name: strings.ToUpper(id)}
	}
	return out
}

func TestRunTeamDraft_SeededCaptainsComplete(t *testing.T) {
	panel := newRecordingPanel()
	surf := surface.New(context.Background(), panel)
	defer surf.Dispose()

	players := participants("a", "b", "c", "d")
	done := make(chan TeamResult, 1)
	go func() {
		res, err := RunTeamDraft(context.Background(), surf, players, players[:2], 2*time.Second, zap.NewNop())
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		done <- res
	}()

	panel.waitTitle(t, "Team draft has begun")
	settle()

	// Captain B opens; C joins B's team, D auto-assigns to A's.
	surf.Deliver("pick:c", "b")

	select {
	case res := <-done:
		if res.Incomplete {
			t.Fatalf("draft reported incomplete")
		}
		if got := ids(res.Teams[0]); got != "a,d" {
			t.Fatalf("team 1: %s, want a,d", got)
		}
		if got := ids(res.Teams[1]); got != "b,c" {
			t.Fatalf("team 2: %s, want b,c", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("draft did not resolve")
	}
}

func TestRunTeamDraft_LoneDrafteeAutoAssigned(t *testing.T) {
	panel := newRecordingPanel()
	surf := surface.New(context.Background(), panel)
	defer surf.Dispose()

	// Two seeded captains leave c as the only draftee: no pick is awaited.
	players := participants("a", "b", "c")
	res, err := RunTeamDraft(context.Background(), surf, players, players[:2], time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if res.Incomplete {
		t.Fatalf("draft reported incomplete")
	}
	if got := ids(res.Teams[0]); got != "a,c" {
		t.Fatalf("team 1: %s, want a,c", got)
	}
	if got := ids(res.Teams[1]); got != "b" {
		t.Fatalf("team 2: %s, want b", got)
	}
}

func TestRunTeamDraft_RejectionSurfacedAndStateHeld(t *testing.T) {
	panel := newRecordingPanel()
	surf := surface.New(context.Background(), panel)
	defer surf.Dispose()

	players := participants("a", "b", "c", "d")
	done := make(chan TeamResult, 1)
	go func() {
		res, err := RunTeamDraft(context.Background(), surf, players, players[:2], 2*time.Second, zap.NewNop())
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		done <- res
	}()

	panel.waitTitle(t, "Team draft has begun")
	settle()

	// A picks out of turn: the reason is rendered and nothing changes.
	surf.Deliver("pick:c", "a")
	panel.waitTitle(t, "not A's turn")
	settle()

	// The legal pick still goes through afterwards.
	surf.Deliver("pick:c", "b")

	select {
	case res := <-done:
		if got := ids(res.Teams[1]); got != "b,c" {
			t.Fatalf("team 2: %s, want b,c", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("draft did not resolve")
	}
}

func TestRunTeamDraft_DeadlineYieldsIncomplete(t *testing.T) {
	panel := newRecordingPanel()
	surf := surface.New(context.Background(), panel)
	defer surf.Dispose()

	players := participants("a", "b", "c", "d", "e", "f")
	done := make(chan TeamResult, 1)
	go func() {
		res, err := RunTeamDraft(context.Background(), surf, players, players[:2], 100*time.Millisecond, zap.NewNop())
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		done <- res
	}()

	panel.waitTitle(t, "Team draft has begun")
	settle()

	// One pick lands, then nobody acts until the deadline.
	surf.Deliver("pick:c", "b")

	select {
	case res := <-done:
		if !res.Incomplete {
			t.Fatalf("want incomplete result, got %+v", res)
		}
		if got := ids(res.Teams[1]); got != "b,c" {
			t.Fatalf("partial team 2: %s, want b,c", got)
		}
		if len(res.Pool) != 3 {
			t.Fatalf("partial pool: %d players, want 3", len(res.Pool))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("draft did not resolve at deadline")
	}
}

func TestRunTeamDraft_CancelReturnsError(t *testing.T) {
	panel := newRecordingPanel()
	surf := surface.New(context.Background(), panel)
	defer surf.Dispose()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := RunTeamDraft(ctx, surf, participants("a", "b", "c", "d"), nil, 2*time.Second, zap.NewNop())
		done <- err
	}()

	panel.waitTitle(t, "Team draft has begun")
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("want a context error, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("draft did not resolve on cancellation")
	}
}

func ids(team []draft.Participant) string {
	var out []string
	for _, p := range team {
		out = append(out, p.ID)
	}
	return strings.Join(out, ",")
}

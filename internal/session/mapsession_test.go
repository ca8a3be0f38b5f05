package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/surface"
)

func TestRunMapDraft_BansToDecision(t *testing.T) {
	panel := newRecordingPanel()
	surf := surface.New(context.Background(), panel)
	defer surf.Dispose()

	c1 := draft.Participant{ID: "a", Name: "A"}
	c2 := draft.Participant{ID: "b", Name: "B"}
	pool := draft.MapsByDevName([]string{"de_cache", "de_dust2", "de_nuke"})

	done := make(chan MapResult, 1)
	go func() {
		res, err := RunMapDraft(context.Background(), surf, c1, c2, pool, 2*time.Second, zap.NewNop())
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		done <- res
	}()

	panel.waitTitle(t, "Map bans have begun")
	settle()

	// Odd pool: A bans first, then B; the survivor decides the match map.
	surf.Deliver("ban:de_cache", "a")
	panel.waitTitle(t, "banned Cache")
	settle()
	surf.Deliver("ban:de_nuke", "b")

	select {
	case res := <-done:
		if res.Incomplete {
			t.Fatalf("ban reported incomplete")
		}
		if res.Map.DevName != "de_dust2" {
			t.Fatalf("decided map: %s, want de_dust2", res.Map.DevName)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("map ban did not resolve")
	}
}

func TestRunMapDraft_RejectionSurfaced(t *testing.T) {
	panel := newRecordingPanel()
	surf := surface.New(context.Background(), panel)
	defer surf.Dispose()

	c1 := draft.Participant{ID: "a", Name: "A"}
	c2 := draft.Participant{ID: "b", Name: "B"}
	pool := draft.MapsByDevName([]string{"de_cache", "de_dust2", "de_nuke"})

	done := make(chan MapResult, 1)
	go func() {
		res, err := RunMapDraft(context.Background(), surf, c1, c2, pool, 2*time.Second, zap.NewNop())
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		done <- res
	}()

	panel.waitTitle(t, "Map bans have begun")
	settle()

	// B bans out of turn: rejected with the reason on the panel, pool intact.
	surf.Deliver("ban:de_cache", "b")
	v := panel.waitTitle(t, "It is A's turn to ban")
	if len(v.Signals) != 3 {
		t.Fatalf("rejected ban changed the offered maps: %+v", v.Signals)
	}
	settle()

	surf.Deliver("ban:de_cache", "a")
	panel.waitTitle(t, "banned Cache")
	settle()
	surf.Deliver("ban:de_dust2", "b")

	select {
	case res := <-done:
		if res.Map.DevName != "de_nuke" {
			t.Fatalf("decided map: %s, want de_nuke", res.Map.DevName)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("map ban did not resolve")
	}
}

func TestRunMapDraft_DeadlineYieldsIncomplete(t *testing.T) {
	panel := newRecordingPanel()
	surf := surface.New(context.Background(), panel)
	defer surf.Dispose()

	c1 := draft.Participant{ID: "a", Name: "A"}
	c2 := draft.Participant{ID: "b", Name: "B"}

	done := make(chan MapResult, 1)
	go func() {
		res, err := RunMapDraft(context.Background(), surf, c1, c2, draft.Catalog, 100*time.Millisecond, zap.NewNop())
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		done <- res
	}()

	select {
	case res := <-done:
		if !res.Incomplete {
			t.Fatalf("want incomplete result, got %+v", res)
		}
		if len(res.Left) != len(draft.Catalog) {
			t.Fatalf("maps left: %d, want %d", len(res.Left), len(draft.Catalog))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("map ban did not resolve at deadline")
	}
}

package readycheck

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/surface"
	"github.com/Diblo/csgo-league-bot/pkg/types"
)

type nopPanel struct{}

func (nopPanel) Render(types.PanelView) {}
func (nopPanel) Close()                 {}

func players(ids ...string) []draft.Participant {
	out := make([]draft.Participant, len(ids))
	for i, id := range ids {
		out[i] = draft.Participant{ID: id, Name: id}
	}
	return out
}

func TestRun_AllReady(t *testing.T) {
	surf := surface.New(context.Background(), nopPanel{})
	defer surf.Dispose()

	ps := players("a", "b", "c")
	done := make(chan Result, 1)
	go func() {
		res, err := Run(context.Background(), surf, ps, time.Second, zap.NewNop())
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		done <- res
	}()
	time.Sleep(10 * time.Millisecond)

	surf.Deliver(ReadySignal, "b")
	surf.Deliver(ReadySignal, "b") // duplicate, idempotent
	surf.Deliver(ReadySignal, "a")
	surf.Deliver(ReadySignal, "c")

	select {
	case res := <-done:
		if !res.AllReady || len(res.Responded) != 3 || len(res.Missing) != 0 {
			t.Fatalf("got %+v", res)
		}
	case <-time.After(time.Second):
		t.Fatalf("ready check did not resolve")
	}
}

func TestRun_PartialTimeout(t *testing.T) {
	surf := surface.New(context.Background(), nopPanel{})
	defer surf.Dispose()

	ps := players("a", "b", "c")
	done := make(chan Result, 1)
	go func() {
		res, err := Run(context.Background(), surf, ps, 100*time.Millisecond, zap.NewNop())
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}
		done <- res
	}()
	time.Sleep(10 * time.Millisecond)

	surf.Deliver(ReadySignal, "a")
	surf.Deliver(ReadySignal, "z") // not in queue, dropped

	select {
	case res := <-done:
		if res.AllReady {
			t.Fatalf("partial check reported AllReady")
		}
		if len(res.Responded) != 1 || res.Responded[0].ID != "a" {
			t.Fatalf("responded: %+v", res.Responded)
		}
		if len(res.Missing) != 2 || res.Missing[0].ID != "b" || res.Missing[1].ID != "c" {
			t.Fatalf("missing: %+v", res.Missing)
		}
	case <-time.After(time.Second):
		t.Fatalf("ready check did not resolve")
	}
}

func TestRun_CancelledContextDiscardsOutcome(t *testing.T) {
	surf := surface.New(context.Background(), nopPanel{})
	defer surf.Dispose()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, surf, players("a", "b"), time.Second, zap.NewNop())
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("want a context error, got nil")
		}
	case <-time.After(time.Second):
		t.Fatalf("ready check did not resolve on cancellation")
	}
}

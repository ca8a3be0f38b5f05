// Package surface implements the ephemeral choice surface sessions negotiate
// over: one rendered panel plus a gated set of selectable signals. All state
// lives inside a single actor goroutine; callers interact through the inbox,
// so no locking is needed and a deadline firing is resolved atomically against
// concurrently arriving signals.
package surface

import (
	"context"
	"errors"

	"github.com/Diblo/csgo-league-bot/pkg/types"
)

var ErrChoiceTimeout = errors.New("choice wait deadline elapsed")
var ErrSurfaceDisposed = errors.New("surface disposed")
var ErrAwaitInProgress = errors.New("another choice wait is outstanding")

// Signal identifies one selectable control offered on the panel.
type Signal string

// Choice is an accepted signal together with who emitted it.
type Choice struct {
	Signal      Signal
	Participant string
}

// Filter decides whether an arriving signal resolves the outstanding wait.
// Signals that fail the filter are dropped, not queued.
type Filter func(sig Signal, participant string) bool

// Transport is the panel the surface renders to. The surface owns a reference
// to it and closes it on dispose; it never copies transport state into itself.
type Transport interface {
	Render(v types.PanelView)
	Close()
}

type msg interface{ isSurfaceMsg() }

type render struct{ view types.PanelView }

type offer struct{ signals []Signal }

type revoke struct{ signals []Signal }

type deliver struct {
	signal      Signal
	participant string
}

type await struct {
	ctx    context.Context
	filter Filter
	reply  chan awaitResult
}

type dispose struct{}

func (render) isSurfaceMsg()  {}
func (offer) isSurfaceMsg()   {}
func (revoke) isSurfaceMsg()  {}
func (deliver) isSurfaceMsg() {}
func (await) isSurfaceMsg()   {}
func (dispose) isSurfaceMsg() {}

type awaitResult struct {
	choice Choice
	err    error
}

type Surface struct {
	inbox  chan msg
	tr     Transport
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, tr Transport) *Surface {
	ctx, cancel := context.WithCancel(parent)
	s := &Surface{
		inbox:  make(chan msg, 64),
		tr:     tr,
		ctx:    ctx,
		cancel: cancel,
	}
	go s.loop()
	return s
}

func (s *Surface) loop() {
	offered := make(map[Signal]bool)
	var waiter *await

	resolve := func(res awaitResult) {
		waiter.reply <- res
		waiter = nil
	}

	for {
		// Arm the deadline branch only while a wait is outstanding. Once it
		// commits, a signal racing with expiry has already lost.
		var waitDone <-chan struct{}
		if waiter != nil {
			waitDone = waiter.ctx.Done()
		}

		select {
		case <-s.ctx.Done():
			if waiter != nil {
				resolve(awaitResult{err: ErrSurfaceDisposed})
			}
			s.tr.Close()
			return

		case <-waitDone:
			if errors.Is(waiter.ctx.Err(), context.DeadlineExceeded) {
				resolve(awaitResult{err: ErrChoiceTimeout})
			} else {
				resolve(awaitResult{err: waiter.ctx.Err()})
			}

		case m := <-s.inbox:
			switch msg := m.(type) {
			case render:
				s.tr.Render(msg.view)

			case offer:
				for _, sig := range msg.signals {
					offered[sig] = true
				}

			case revoke:
				for _, sig := range msg.signals {
					delete(offered, sig)
				}

			case deliver:
				// Unoffered or filtered-out signals are dropped silently.
				if waiter == nil || !offered[msg.signal] {
					break
				}
				if waiter.filter != nil && !waiter.filter(msg.signal, msg.participant) {
					break
				}
				resolve(awaitResult{choice: Choice{Signal: msg.signal, Participant: msg.participant}})

			case await:
				if waiter != nil {
					msg.reply <- awaitResult{err: ErrAwaitInProgress}
					break
				}
				waiter = &msg

			case dispose:
				if waiter != nil {
					resolve(awaitResult{err: ErrSurfaceDisposed})
				}
				clear(offered)
				s.tr.Close()
				s.cancel()
				return
			}
		}
	}
}

func (s *Surface) send(m msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

// Render replaces the panel's displayed state.
func (s *Surface) Render(v types.PanelView) { s.send(render{view: v}) }

// Offer exposes signals for selection. Offering an already-offered signal is
// a no-op.
func (s *Surface) Offer(signals ...Signal) { s.send(offer{signals: signals}) }

// Revoke removes signals from the offered set. Revoking an absent signal is a
// no-op.
func (s *Surface) Revoke(signals ...Signal) { s.send(revoke{signals: signals}) }

// Deliver feeds a signal-arrival event from the transport into the surface.
// It never blocks: signals are not queued, so a saturated inbox just drops
// the signal. This also keeps the hub loop from ever waiting on the surface
// loop while the surface waits on the hub.
func (s *Surface) Deliver(sig Signal, participant string) {
	select {
	case s.inbox <- deliver{signal: sig, participant: participant}:
	default:
	}
}

// AwaitChoice suspends until a matching offered signal arrives, the context
// deadline elapses (ErrChoiceTimeout), the context is cancelled, or the
// surface is disposed. Exactly one wait may be outstanding at a time.
func (s *Surface) AwaitChoice(ctx context.Context, filter Filter) (Choice, error) {
	reply := make(chan awaitResult, 1)
	select {
	case s.inbox <- await{ctx: ctx, filter: filter, reply: reply}:
	case <-s.ctx.Done():
		return Choice{}, ErrSurfaceDisposed
	}
	select {
	case res := <-reply:
		return res.choice, res.err
	case <-s.ctx.Done():
		// The loop may have resolved the wait in the same instant it shut
		// down; prefer the delivered result if there is one.
		select {
		case res := <-reply:
			return res.choice, res.err
		default:
			return Choice{}, ErrSurfaceDisposed
		}
	}
}

// Dispose revokes every signal and releases the panel. Any outstanding wait
// resolves with ErrSurfaceDisposed. Safe to call more than once.
func (s *Surface) Dispose() { s.send(dispose{}) }

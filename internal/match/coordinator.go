// Package match orchestrates end-to-end match formation per arena: ready
// check, team formation, map selection, then server allocation. At most one
// formation runs per arena; starting a new one supersedes and cancels the
// previous one, and a superseded run's outcome is never delivered.
package match

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/draft"
	"github.com/Diblo/csgo-league-bot/internal/former"
	"github.com/Diblo/csgo-league-bot/internal/league"
	"github.com/Diblo/csgo-league-bot/internal/panel"
	"github.com/Diblo/csgo-league-bot/internal/readycheck"
	"github.com/Diblo/csgo-league-bot/internal/session"
	"github.com/Diblo/csgo-league-bot/internal/store"
	"github.com/Diblo/csgo-league-bot/internal/surface"
)

// Queue is the external queue collaborator.
type Queue interface {
	RemoveParticipants(ctx context.Context, arenaID string, ids []string) error
}

// Allocator requests a match server for two finalized rosters.
type Allocator interface {
	StartMatch(ctx context.Context, teamOne, teamTwo []draft.Participant) (league.MatchServer, error)
}

type Options struct {
	ReadyTimeout time.Duration
	DraftTimeout time.Duration
}

type Deps struct {
	Config store.ConfigStore
	Queue  Queue
	Scorer former.Scorer
	Alloc  Allocator
	Panels *panel.Hub
	Log    *zap.Logger
}

type coordMsg interface{ isCoordMsg() }

type startFormation struct {
	arena   string
	players []draft.Participant
}

type formationEnded struct {
	arena string
	gen   int
}

type shutdown struct{}

func (startFormation) isCoordMsg() {}
func (formationEnded) isCoordMsg() {}
func (shutdown) isCoordMsg()       {}

// formation is the per-arena pending slot.
type formation struct {
	gen    int
	cancel context.CancelFunc
}

type Coordinator struct {
	inbox  chan coordMsg
	ctx    context.Context
	cancel context.CancelFunc

	deps  Deps
	teams *former.TeamFormer
	maps  *former.MapFormer
	opts  Options
	log   *zap.Logger

	// loop-owned
	runs map[string]*formation
	gen  int
}

func NewCoordinator(parent context.Context, deps Deps, opts Options) *Coordinator {
	if opts.ReadyTimeout == 0 {
		opts.ReadyTimeout = readycheck.Timeout
	}
	if opts.DraftTimeout == 0 {
		opts.DraftTimeout = session.DraftTimeout
	}
	ctx, cancel := context.WithCancel(parent)
	c := &Coordinator{
		inbox:  make(chan coordMsg, 64),
		ctx:    ctx,
		cancel: cancel,
		deps:   deps,
		teams:  &former.TeamFormer{Scorer: deps.Scorer, DraftTimeout: opts.DraftTimeout, Log: deps.Log},
		maps:   &former.MapFormer{DraftTimeout: opts.DraftTimeout, Log: deps.Log},
		opts:   opts,
		log:    deps.Log,
		runs:   make(map[string]*formation),
	}
	go c.loop()
	return c
}

func (c *Coordinator) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case startFormation:
				// Exclusive check-and-replace on the arena's pending slot: a
				// new fill preempts whatever was in flight.
				if prev := c.runs[msg.arena]; prev != nil {
					c.log.Info("superseding pending formation", zap.String("arena", msg.arena))
					prev.cancel()
				}
				c.gen++
				rctx, cancel := context.WithCancel(c.ctx)
				c.runs[msg.arena] = &formation{gen: c.gen, cancel: cancel}
				go c.run(rctx, c.gen, msg.arena, msg.players)

			case formationEnded:
				if f := c.runs[msg.arena]; f != nil && f.gen == msg.gen {
					f.cancel()
					delete(c.runs, msg.arena)
				}

			case shutdown:
				c.shutdown()
				return
			}
		}
	}
}

func (c *Coordinator) shutdown() {
	for arena, f := range c.runs {
		f.cancel()
		delete(c.runs, arena)
	}
	c.cancel()
}

func (c *Coordinator) send(m coordMsg) {
	select {
	case c.inbox <- m:
	case <-c.ctx.Done():
	}
}

// StartFormation kicks off match formation for a filled queue.
func (c *Coordinator) StartFormation(arena string, players []draft.Participant) {
	c.send(startFormation{arena: arena, players: players})
}

func (c *Coordinator) Shutdown() {
	c.send(shutdown{})
}

// run is the whole pipeline for one formation attempt. It owns the arena's
// panel surface for its lifetime and disposes it on every exit path.
func (c *Coordinator) run(ctx context.Context, gen int, arena string, players []draft.Participant) {
	defer c.send(formationEnded{arena: arena, gen: gen})
	log := c.log.With(zap.String("arena", arena))

	p := c.deps.Panels.Open(arena)
	surf := surface.New(ctx, p)
	p.Route(surf.Deliver)
	defer surf.Dispose()

	res, err := readycheck.Run(ctx, surf, players, c.opts.ReadyTimeout, log)
	if err != nil {
		// Superseded or shutting down; the outcome is discarded.
		log.Debug("ready check abandoned", zap.Error(err))
		return
	}
	surf.Revoke(readycheck.ReadySignal)

	if !res.AllReady {
		log.Info("ready check timed out", zap.Int("missing", len(res.Missing)))
		surf.Render(notReadyView(res.Missing))
		if err := c.deps.Queue.RemoveParticipants(ctx, arena, ids(res.Missing)); err != nil {
			log.Warn("failed to remove unready players from queue", zap.Error(err))
		}
		return
	}

	cfg, err := c.deps.Config.GetArenaConfig(ctx, arena)
	if err != nil {
		c.fail(surf, log, "Could not load arena settings", err)
		return
	}

	teamsRes, err := c.teams.Form(ctx, cfg.TeamMethod, cfg.CaptainMethod, players, surf)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.fail(surf, log, "Could not create teams", err)
		return
	}
	if teamsRes.Incomplete {
		surf.Render(abortView("The team draft timed out before both teams were filled"))
		return
	}
	teamOne, teamTwo := teamsRes.Teams[0], teamsRes.Teams[1]

	mapRes, err := c.maps.Form(ctx, cfg.MapMethod, cfg.ActiveMaps(), teamOne[0], teamTwo[0], surf)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.fail(surf, log, "Could not select a map", err)
		return
	}
	if mapRes.Incomplete {
		surf.Render(abortView("The map draft timed out before a map was decided"))
		return
	}

	surf.Render(fetchingView())

	server, err := c.deps.Alloc.StartMatch(ctx, teamOne, teamTwo)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		// Surfaced once; no retry at this layer.
		log.Warn("server allocation failed", zap.Error(err))
		surf.Render(noServersView())
		return
	}

	log.Info("match server ready",
		zap.String("match", server.ID), zap.String("map", mapRes.Map.DevName))
	surf.Render(matchReadyView(server, mapRes.Map, teamOne, teamTwo))
}

func (c *Coordinator) fail(surf *surface.Surface, log *zap.Logger, title string, err error) {
	log.Error(title, zap.Error(err))
	surf.Render(abortView(title))
}

func ids(players []draft.Participant) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

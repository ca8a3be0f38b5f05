// Package panel fans rendered panel views out to the clients watching an
// arena and routes their choice signals back to the surface that currently
// owns the arena's panel. Opening a new panel for an arena supersedes the old
// one: stale renders and stale signal routes are dropped by generation.
package panel

import (
	"context"

	"go.uber.org/zap"

	"github.com/Diblo/csgo-league-bot/internal/surface"
	"github.com/Diblo/csgo-league-bot/pkg/types"
)

// Sink receives signals for the panel that registered it.
type Sink func(sig surface.Signal, participant string)

type hubMsg interface{ isHubMsg() }

type openPanel struct {
	arena string
	reply chan *Panel
}

type bindPanel struct {
	arena string
	gen   int
	sink  Sink
}

type panelRender struct {
	arena string
	gen   int
	view  types.PanelView
}

type panelClose struct {
	arena string
	gen   int
}

type deliverSignal struct {
	arena       string
	signal      surface.Signal
	participant string
}

type joinFeed struct {
	arena    string
	clientID string
	outbox   chan types.ServerMessage
}

type leaveFeed struct {
	arena    string
	clientID string
}

type shutdownHub struct{}

func (openPanel) isHubMsg()     {}
func (bindPanel) isHubMsg()     {}
func (panelRender) isHubMsg()   {}
func (panelClose) isHubMsg()    {}
func (deliverSignal) isHubMsg() {}
func (joinFeed) isHubMsg()      {}
func (leaveFeed) isHubMsg()     {}
func (shutdownHub) isHubMsg()   {}

// feed is one arena's long-lived client fan-out plus the signal route of its
// current panel.
type feed struct {
	clients map[string]chan types.ServerMessage
	last    types.PanelView
	version int
	gen     int
	sink    Sink
}

type Hub struct {
	inbox  chan hubMsg
	feeds  map[string]*feed
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan hubMsg, 64),
		feeds:  make(map[string]*feed),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	go h.loop()
	return h
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case openPanel:
				f := h.feed(msg.arena)
				f.gen++
				f.sink = nil
				msg.reply <- &Panel{hub: h, arena: msg.arena, gen: f.gen}

			case bindPanel:
				f := h.feed(msg.arena)
				if msg.gen != f.gen {
					break // superseded before it bound
				}
				f.sink = msg.sink

			case panelRender:
				f := h.feed(msg.arena)
				if msg.gen != f.gen {
					h.log.Debug("dropping render from superseded panel",
						zap.String("arena", msg.arena), zap.Int("gen", msg.gen))
					break
				}
				f.last = msg.view
				f.version++
				h.broadcast(msg.arena, f)

			case panelClose:
				f := h.feed(msg.arena)
				if msg.gen != f.gen {
					break
				}
				f.sink = nil

			case deliverSignal:
				f := h.feeds[msg.arena]
				if f == nil || f.sink == nil {
					break // no draft in progress for this arena
				}
				f.sink(msg.signal, msg.participant)

			case joinFeed:
				f := h.feed(msg.arena)
				f.clients[msg.clientID] = msg.outbox
				// New clients get the current view immediately.
				msg.outbox <- types.ServerMessage{Type: "PanelUpdate", Version: f.version, View: viewCopy(f.last)}

			case leaveFeed:
				// Closing the outbox releases the client's writer. Already-
				// dropped clients are out of the map, so no double close.
				if f := h.feeds[msg.arena]; f != nil {
					if ch, ok := f.clients[msg.clientID]; ok {
						delete(f.clients, msg.clientID)
						close(ch)
					}
				}

			case shutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) feed(arena string) *feed {
	f := h.feeds[arena]
	if f == nil {
		f = &feed{clients: make(map[string]chan types.ServerMessage)}
		h.feeds[arena] = f
	}
	return f
}

func (h *Hub) broadcast(arena string, f *feed) {
	update := types.ServerMessage{Type: "PanelUpdate", Version: f.version, View: viewCopy(f.last)}
	for id, ch := range f.clients {
		select {
		case ch <- update:
		default:
			// Client is slow/full - drop them.
			h.log.Debug("dropping slow panel client", zap.String("arena", arena), zap.String("client", id))
			close(ch)
			delete(f.clients, id)
		}
	}
}

func (h *Hub) shutdown() {
	for _, f := range h.feeds {
		for id, ch := range f.clients {
			close(ch)
			delete(f.clients, id)
		}
	}
	clear(h.feeds)
	h.cancel()
}

func viewCopy(v types.PanelView) *types.PanelView {
	c := v
	return &c
}

func (h *Hub) send(m hubMsg) {
	select {
	case h.inbox <- m:
	case <-h.ctx.Done():
	}
}

// Open replaces the arena's panel, returning a handle for the new one. Any
// previous panel for the arena stops rendering and receiving signals.
func (h *Hub) Open(arena string) *Panel {
	reply := make(chan *Panel, 1)
	select {
	case h.inbox <- openPanel{arena: arena, reply: reply}:
	case <-h.ctx.Done():
		return &Panel{hub: h, arena: arena, gen: -1}
	}
	select {
	case p := <-reply:
		return p
	case <-h.ctx.Done():
		return &Panel{hub: h, arena: arena, gen: -1}
	}
}

// Deliver routes a client's choice signal to the arena's current panel.
func (h *Hub) Deliver(arena string, sig surface.Signal, participant string) {
	h.send(deliverSignal{arena: arena, signal: sig, participant: participant})
}

// Join attaches a client to an arena's feed. The outbox receives the current
// view immediately and every render after it, and is closed if the client
// falls behind or the hub shuts down.
func (h *Hub) Join(arena, clientID string, outbox chan types.ServerMessage) {
	h.send(joinFeed{arena: arena, clientID: clientID, outbox: outbox})
}

// Leave detaches a client and closes its outbox.
func (h *Hub) Leave(arena, clientID string) {
	h.send(leaveFeed{arena: arena, clientID: clientID})
}

func (h *Hub) Shutdown() {
	h.send(shutdownHub{})
}

// Panel is a handle to one generation of an arena's panel. It implements
// surface.Transport.
type Panel struct {
	hub   *Hub
	arena string
	gen   int
}

func (p *Panel) Render(v types.PanelView) {
	p.hub.send(panelRender{arena: p.arena, gen: p.gen, view: v})
}

func (p *Panel) Close() {
	p.hub.send(panelClose{arena: p.arena, gen: p.gen})
}

// Route registers where this panel's signals should be delivered, normally
// the owning surface's Deliver method.
func (p *Panel) Route(sink Sink) {
	p.hub.send(bindPanel{arena: p.arena, gen: p.gen, sink: sink})
}

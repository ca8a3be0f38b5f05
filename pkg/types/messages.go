package types

// Client -> Server
//
// Signal:
//   signal: string // ID of an offered SignalOption on the arena's panel

type ClientMessage struct {
	Type   string `json:"type"`
	Signal string `json:"signal,omitempty"`
}

// Server -> Client
//
// PanelUpdate:
//   version: number // monotonic per arena feed
//   view: PanelView
//
// Error:
//   error: string

type ServerMessage struct {
	Type    string     `json:"type"` // "PanelUpdate" | "Error"
	Version int        `json:"version,omitempty"`
	View    *PanelView `json:"view,omitempty"`
	Error   string     `json:"error,omitempty"`
}

package draft

import "errors"

var ErrWrongTurn = errors.New("not your turn")
var ErrNotCaptain = errors.New("picker is not a team captain")
var ErrTeamFull = errors.New("team is full")
var ErrNotInPool = errors.New("target is not in the pool")
var ErrMapUnavailable = errors.New("map is not available")
var ErrDraftComplete = errors.New("draft already completed")

// Participant is an opaque player identity plus a display name. Immutable for
// the duration of a session.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EventType string

const (
	EvtCaptainSeated EventType = "CaptainSeated"
	EvtPlayerPicked  EventType = "PlayerPicked"
	EvtAutoAssigned  EventType = "AutoAssigned"
	EvtDraftComplete EventType = "DraftComplete"
	EvtMapBanned     EventType = "MapBanned"
	EvtMapDecided    EventType = "MapDecided"
)

type Event struct {
	Type      EventType
	TeamIndex int
	Player    Participant
	Map       GameMap
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

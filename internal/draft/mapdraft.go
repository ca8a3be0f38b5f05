package draft

import "slices"

// MapState is the full state of a captain map ban. Invariant: Left is always a
// subsequence of Pool and never empty.
type MapState struct {
	Captains [2]Participant
	Pool     []GameMap // the arena's active pool, in catalog order
	Left     []GameMap // maps not yet banned
	Turn     int       // accepted bans so far, indexes into BanTurn
}

type Ban struct {
	Banner  string // participant ID emitting the ban
	DevName string // map being banned
}

// NewMapState seeds a ban session. With an even pool the captain order is
// swapped so both captains ban an equal number of maps.
func NewMapState(captain1, captain2 Participant, pool []GameMap) MapState {
	captains := [2]Participant{captain1, captain2}
	if len(pool)%2 == 0 {
		captains[0], captains[1] = captains[1], captains[0]
	}
	return MapState{
		Captains: captains,
		Pool:     slices.Clone(pool),
		Left:     slices.Clone(pool),
	}
}

// ActiveBanner returns the captain whose turn it is.
func (s MapState) ActiveBanner() Participant {
	return s.Captains[BanTurn(s.Turn)]
}

func (s MapState) Complete() bool {
	return len(s.Left) == 1
}

// Decided returns the surviving map once the ban is complete.
func (s MapState) Decided() (GameMap, bool) {
	if !s.Complete() {
		return GameMap{}, false
	}
	return s.Left[0], true
}

func (s MapState) Available(devName string) bool {
	return slices.ContainsFunc(s.Left, func(m GameMap) bool { return m.DevName == devName })
}

// ApplyBan processes one ban attempt. Rejections never mutate state.
func ApplyBan(s MapState, ban Ban) ([]Event, MapState, error) {
	if s.Complete() {
		return nil, s, ErrDraftComplete
	}
	if ban.Banner != s.ActiveBanner().ID {
		return nil, s, ErrWrongTurn
	}

	ns := s
	ns.Left = slices.Clone(s.Left)

	idx := slices.IndexFunc(ns.Left, func(m GameMap) bool { return m.DevName == ban.DevName })
	if idx < 0 {
		return nil, s, ErrMapUnavailable
	}
	banned := ns.Left[idx]
	ns.Left = slices.Delete(ns.Left, idx, idx+1)
	ns.Turn++

	events := []Event{{Type: EvtMapBanned, Player: s.ActiveBanner(), Map: banned}}
	if decided, ok := ns.Decided(); ok {
		events = append(events, Event{Type: EvtMapDecided, Map: decided})
	}
	return events, ns, nil
}

package draft

import "slices"

// TeamState is the full state of a captain-based team draft. Invariant: Pool
// plus both Teams always partition the original participant set.
type TeamState struct {
	Teams [2][]Participant
	Pool  []Participant
	Turn  int // accepted picks so far, indexes into PickTurn
	Size  int // original participant count
}

type Pick struct {
	Picker string // participant ID emitting the pick
	Pickee string // participant ID being picked
}

func NewTeamState(pool []Participant) TeamState {
	return TeamState{
		Pool: slices.Clone(pool),
		Size: len(pool),
	}
}

// SeatCaptain moves a pool member into the first slot of a team. Used by the
// rank and random captain methods before any picks happen.
func (s TeamState) SeatCaptain(teamIdx int, id string) TeamState {
	ns := s.clone()
	if captain, ok := ns.takeFromPool(id); ok {
		ns.Teams[teamIdx] = append(ns.Teams[teamIdx], captain)
	}
	return ns
}

// Quota is the maximum size of either team.
func (s TeamState) Quota() int {
	return (s.Size + 1) / 2
}

// ActivePicker returns the captain whose turn it is, if that team has one.
func (s TeamState) ActivePicker() (Participant, bool) {
	team := s.Teams[PickTurn(s.Turn)]
	if len(team) == 0 {
		return Participant{}, false
	}
	return team[0], true
}

func (s TeamState) Complete() bool {
	return len(s.Pool) == 0
}

func (s TeamState) InPool(id string) bool {
	return slices.ContainsFunc(s.Pool, func(p Participant) bool { return p.ID == id })
}

func (s TeamState) clone() TeamState {
	ns := s
	ns.Teams[0] = slices.Clone(s.Teams[0])
	ns.Teams[1] = slices.Clone(s.Teams[1])
	ns.Pool = slices.Clone(s.Pool)
	return ns
}

func (s *TeamState) takeFromPool(id string) (Participant, bool) {
	for i, p := range s.Pool {
		if p.ID == id {
			s.Pool = slices.Delete(s.Pool, i, i+1)
			return p, true
		}
	}
	return Participant{}, false
}

// ApplyPick processes one pick attempt. On rejection the error names the
// reason and the returned state carries only whatever volunteer captain
// seating committed before the rejection; a pure rejection returns the input
// state untouched.
func ApplyPick(s TeamState, pick Pick) ([]Event, TeamState, error) {
	if s.Complete() {
		return nil, s, ErrDraftComplete
	}

	ns := s.clone()
	var events []Event

	// Resolve the picking team. A pick from a participant while a captain
	// slot is still empty volunteers them into that slot.
	var teamIdx int
	switch {
	case len(ns.Teams[0]) == 0:
		captain, ok := ns.takeFromPool(pick.Picker)
		if !ok {
			return nil, s, ErrNotCaptain
		}
		ns.Teams[0] = append(ns.Teams[0], captain)
		events = append(events, Event{Type: EvtCaptainSeated, TeamIndex: 0, Player: captain})
		teamIdx = 0
	case len(ns.Teams[1]) == 0 && pick.Picker != ns.Teams[0][0].ID:
		captain, ok := ns.takeFromPool(pick.Picker)
		if !ok {
			return nil, s, ErrNotCaptain
		}
		ns.Teams[1] = append(ns.Teams[1], captain)
		events = append(events, Event{Type: EvtCaptainSeated, TeamIndex: 1, Player: captain})
		teamIdx = 1
	case pick.Picker == ns.Teams[0][0].ID:
		teamIdx = 0
	case pick.Picker == ns.Teams[1][0].ID:
		teamIdx = 1
	default:
		return nil, s, ErrNotCaptain
	}

	seated := ContainsEvent(events, EvtCaptainSeated)

	// A self-pick is only the volunteer bootstrap: the seating above consumed
	// it and the turn index does not advance.
	if pick.Picker == pick.Pickee {
		if !seated {
			return nil, s, ErrNotInPool
		}
		settle(&ns, &events)
		return events, ns, nil
	}

	if teamIdx != PickTurn(ns.Turn) {
		settle(&ns, &events)
		return events, ns, ErrWrongTurn
	}
	if len(ns.Teams[teamIdx]) >= ns.Quota() {
		settle(&ns, &events)
		return events, ns, ErrTeamFull
	}

	pickee, ok := ns.takeFromPool(pick.Pickee)
	if !ok {
		settle(&ns, &events)
		return events, ns, ErrNotInPool
	}
	ns.Teams[teamIdx] = append(ns.Teams[teamIdx], pickee)
	ns.Turn++
	events = append(events, Event{Type: EvtPlayerPicked, TeamIndex: teamIdx, Player: pickee})

	settle(&ns, &events)
	return events, ns, nil
}

// Settle applies the end-of-draft auto-assignment without a pick: once both
// captains are seated and a single participant remains, they join the smaller
// team. No-op while either captain slot is empty.
func Settle(s TeamState) ([]Event, TeamState) {
	if len(s.Teams[0]) == 0 || len(s.Teams[1]) == 0 {
		return nil, s
	}
	ns := s.clone()
	var events []Event
	settle(&ns, &events)
	return events, ns
}

// settle auto-assigns the last pool member to the smaller team (ties go to
// team 1) and emits completion once the pool is empty.
func settle(ns *TeamState, events *[]Event) {
	if len(ns.Pool) == 1 {
		teamIdx := 0
		if len(ns.Teams[1]) < len(ns.Teams[0]) {
			teamIdx = 1
		}
		last := ns.Pool[0]
		ns.Pool = ns.Pool[:0]
		ns.Teams[teamIdx] = append(ns.Teams[teamIdx], last)
		*events = append(*events, Event{Type: EvtAutoAssigned, TeamIndex: teamIdx, Player: last})
	}
	if len(ns.Pool) == 0 {
		*events = append(*events, Event{Type: EvtDraftComplete})
	}
}

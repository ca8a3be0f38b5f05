package types

// PanelView is the full rendered state of an arena's panel. Every accepted
// move during match formation re-renders the whole view; clients replace,
// never merge.
type PanelView struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Fields      []Field        `json:"fields,omitempty"`
	Footer      string         `json:"footer,omitempty"`
	Signals     []SignalOption `json:"signals,omitempty"`
}

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SignalOption is a selectable control currently offered on the panel.
type SignalOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

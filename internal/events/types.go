package events

// Event type constants for kelindar/event.
const (
	TypeModeChanged uint32 = iota + 1
	TypeCaseChanged
	TypePositionChanged
	TypeFrameFlushed
	TypeLinkChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ModeChangedEvent is published when the dispatcher switches between
// manual and driven control.
type ModeChangedEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e ModeChangedEvent) Type() uint32 { return TypeModeChanged }

// CaseChangedEvent is published when the encoder selects a different case.
type CaseChangedEvent struct {
	Case     int    `json:"case"`
	Position int    `json:"position"`
	Effect   string `json:"effect"`
}

func (e CaseChangedEvent) Type() uint32 { return TypeCaseChanged }

// PositionChangedEvent is published for every encoder step.
type PositionChangedEvent struct {
	Position int `json:"position"`
	Step     int `json:"step"`
}

func (e PositionChangedEvent) Type() uint32 { return TypePositionChanged }

// FrameFlushedEvent is published after every push to the strip driver.
type FrameFlushedEvent struct {
	Source  string  `json:"source"` // effect name, or "external"
	FlushMS float64 `json:"flush_ms"`
	Err     string  `json:"error,omitempty"`
}

func (e FrameFlushedEvent) Type() uint32 { return TypeFrameFlushed }

// LinkChangedEvent is published when the driverstation link comes or goes.
type LinkChangedEvent struct {
	Linked bool   `json:"linked"`
	Remote string `json:"remote,omitempty"`
}

func (e LinkChangedEvent) Type() uint32 { return TypeLinkChanged }

package dispatch

// Mode is who controls the strip.
type Mode int32

const (
	// Manual runs the effect the encoder selects.
	Manual Mode = iota
	// Driven mirrors the external controller.
	Driven
)

func (m Mode) String() string {
	switch m {
	case Manual:
		return "manual"
	case Driven:
		return "driven"
	default:
		return "unknown"
	}
}

// Link reports whether an external controller is connected.
type Link interface {
	IsLinked() bool
}

// LinkFunc adapts a plain function to Link.
type LinkFunc func() bool

func (f LinkFunc) IsLinked() bool { return f() }

// External applies the external controller's state to the strip while in
// Driven mode. It returns true when it changed the buffer and a flush is
// needed. It must not block.
type External interface {
	ApplyExternal(strip Strip) bool
}

// Activator is implemented by an External that wants to know when it takes
// over the strip.
type Activator interface {
	Activate()
}

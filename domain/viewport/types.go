package viewport

import "strings"

// DragState enumerates finder interaction states.
type DragState int

const (
	StateIdle DragState = iota
	StateDragging
)

func (s DragState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// StateListener observes drag state transitions.
type StateListener func(prev, next DragState)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota + 1
	ButtonMiddle
	ButtonSecondary
)

// Modifier is a bitmask of keyboard modifiers held during pointer input.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether all bits of m2 are set in m.
func (m Modifier) Has(m2 Modifier) bool { return m2 != 0 && m&m2 == m2 }

// ParseModifier maps "alt", "ctrl" or "shift" to a Modifier, defaulting to ModAlt.
func ParseModifier(name string) Modifier {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ctrl", "control":
		return ModCtrl
	case "shift":
		return ModShift
	default:
		return ModAlt
	}
}

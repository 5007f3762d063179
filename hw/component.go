package hw

import (
	"strings"

	"github.com/tinylib/msgp/msgp"
)

// A Variant identifies a hardware block implementation, for example
// "chip8.cpu" or "mapper.uxrom".
type Variant string

// ComponentID is the index of a component in its machine, in definition
// order. It doubles as the scheduling priority and the signal tie-break.
type ComponentID int

// NoComponent is the source of signals raised by the machine itself.
const NoComponent ComponentID = -1

// Component is implemented by every hardware block.
type Component interface {
	// Reset puts the component in its power-on (hard) or reset-line (soft)
	// state.
	Reset(hard bool)
}

// Clocked is implemented by components that consume cycles.
type Clocked interface {
	// Step runs the component for up to the given number of cycles of its
	// own clock and returns the number of cycles actually used. A component
	// may overshoot (an instruction can't be split), the overshoot is
	// deducted from the next budget.
	Step(cycles int64) int64
}

// VideoSource is implemented by components producing a picture.
type VideoSource interface {
	Frame() FrameDescriptor
}

// AudioSource is implemented by components producing samples. Audio is
// called once per macro-step and returns the samples of that step.
type AudioSource interface {
	Audio() AudioDescriptor
}

// Stateful components take part in save-states.
type Stateful interface {
	StateVersion() uint16
	SaveState(w *msgp.Writer) error

	// LoadState decodes a state previously written by SaveState with the
	// given version. It must not modify the component: the returned commit
	// function applies the decoded state and is only called once every
	// component of the machine decoded successfully.
	LoadState(version uint16, r *msgp.Reader) (commit func(), err error)
}

// SignalHandler is implemented by components receiving signals.
type SignalHandler interface {
	HandleSignal(sig Signal)
}

// A Field is a named value shown by inspection.
type Field struct {
	Name  string
	Value uint64
	Width int // in bits, for display
}

// Inspectable components expose a register view.
type Inspectable interface {
	Inspect() []Field
}

// Capability is the set of roles a component plays in the machine.
type Capability uint8

const (
	CapClocked Capability = 1 << iota
	CapVideo
	CapAudio
	CapState
	CapSignals
	CapInspect
)

var capNames = [...]string{"clocked", "video", "audio", "state", "signals", "inspect"}

func (c Capability) String() string {
	var parts []string
	for i, name := range capNames {
		if c&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Handles are the typed views of a component the machine uses. Factories
// fill in the handles matching what the component does; nil handles are
// capabilities the component doesn't have.
type Handles struct {
	Component Component

	Clock Clocked
	Rate  uint64 // cycles per second, required with Clock

	Video   VideoSource
	Audio   AudioSource
	State   Stateful
	Signals SignalHandler
	Inspect Inspectable
}

// Caps returns the capability set of h.
func (h *Handles) Caps() Capability {
	var c Capability
	if h.Clock != nil {
		c |= CapClocked
	}
	if h.Video != nil {
		c |= CapVideo
	}
	if h.Audio != nil {
		c |= CapAudio
	}
	if h.State != nil {
		c |= CapState
	}
	if h.Signals != nil {
		c |= CapSignals
	}
	if h.Inspect != nil {
		c |= CapInspect
	}
	return c
}

// Auto fills the handles implemented by the component itself.
func Auto(c Component) Handles {
	h := Handles{Component: c}
	h.Clock, _ = c.(Clocked)
	h.Video, _ = c.(VideoSource)
	h.Audio, _ = c.(AudioSource)
	h.State, _ = c.(Stateful)
	h.Signals, _ = c.(SignalHandler)
	h.Inspect, _ = c.(Inspectable)
	return h
}

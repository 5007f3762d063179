package hw

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every construction error caused by a bad
	// component configuration or quirk.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnsupported reports an unknown hardware variant.
	ErrUnsupported = errors.New("unsupported configuration")

	ErrNotRunning = errors.New("machine is not running")
	ErrStopped    = errors.New("machine is stopped")

	// ErrMidStep is returned by operations that require a macro-step
	// boundary when called from inside a step.
	ErrMidStep = errors.New("operation not allowed inside a macro-step")
)

// A ConfigError is a construction error attributed to a component.
type ConfigError struct {
	Component string
	Variant   Variant
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Variant == "" {
		return fmt.Sprintf("component %q: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("component %q (%s): %v", e.Component, e.Variant, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func configErrorf(name string, variant Variant, format string, args ...any) error {
	return &ConfigError{Component: name, Variant: variant, Err: fmt.Errorf(format, args...)}
}

// A MachineFault is a runtime fault raised by a component. The machine is
// paused at the end of the macro-step in which it occurred.
type MachineFault struct {
	Component string
	Variant   Variant
	Time      VirtualTime
	Cycle     uint64 // component cycle counter when the fault was raised
	Err       error
}

func (f *MachineFault) Error() string {
	return fmt.Sprintf("fault in %s (%s) at %s, cycle %d: %v", f.Component, f.Variant, f.Time, f.Cycle, f.Err)
}

func (f *MachineFault) Unwrap() error { return f.Err }

package hwio

import (
	"errors"
	"fmt"
)

var (
	// ErrOverlap is matched by *OverlapError.
	ErrOverlap = errors.New("overlapping bus mapping")
	ErrRange   = errors.New("address range out of bus")
)

// OverlapError is returned by Table.Map when a region intersects another
// region of the same layer.
type OverlapError struct {
	Bus      string
	Region   Region
	Existing Region
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("hwio: %s: region %q [%04x-%04x] overlaps %q [%04x-%04x] on layer %d",
		e.Bus, e.Region.Name, e.Region.Begin, e.Region.End,
		e.Existing.Name, e.Existing.Begin, e.Existing.End, e.Region.Layer)
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

// UnmappedError reports an access to an address with no mapped device, under
// the strict open-bus policy.
type UnmappedError struct {
	Bus   string
	Addr  uint16
	Write bool
	Value uint8
}

func (e *UnmappedError) Error() string {
	if e.Write {
		return fmt.Sprintf("hwio: %s: write %02x to unmapped address %04x", e.Bus, e.Value, e.Addr)
	}
	return fmt.Sprintf("hwio: %s: read from unmapped address %04x", e.Bus, e.Addr)
}

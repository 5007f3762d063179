package hw

import "fmt"

// VirtualTime locates a point of the emulated timeline: the macro-step index
// and the slice within it.
type VirtualTime struct {
	Step  uint64
	Slice int
}

func (t VirtualTime) String() string {
	return fmt.Sprintf("step %d.%d", t.Step, t.Slice)
}

// clockDomain converts the machine time base into cycles of one component.
// Budgets are computed with exact rational arithmetic so that no drift
// accumulates: over one second a component receives exactly rate cycles.
type clockDomain struct {
	rate   uint64 // Hz
	rem    uint64 // fractional cycles, in units of 1/(frameNum*slices)
	debt   int64  // overshoot and stalls, <= 0
	cycles uint64 // total cycles run
}

// grant returns the budget of the next slice.
func (c *clockDomain) grant(fr Rate, slices int) int64 {
	div := fr.Num * uint64(slices)
	acc := c.rem + c.rate*fr.Den
	c.rem = acc % div
	return int64(acc/div) + c.debt
}

// consume accounts for a slice in which used cycles were run out of budget.
// Unused cycles are dropped, overshoot is carried to the next slice.
func (c *clockDomain) consume(budget, used int64) {
	if used < 0 {
		used = 0
	}
	c.cycles += uint64(used)
	if used > budget {
		c.debt = budget - used
		return
	}
	c.debt = 0
}

// skip accounts for a slice with a non-positive budget.
func (c *clockDomain) skip(budget int64) {
	c.debt = budget
}

package hwio

import "fmt"

//go:generate go tool stringer -type=OpenBus

// OpenBus is the policy applied to accesses to unmapped addresses.
type OpenBus uint8

const (
	OpenBusLast     OpenBus = iota // return the last value driven on the bus
	OpenBusSentinel                // return a fixed value
	OpenBusStrict                  // report a fault
)

// ParseOpenBus parses the configuration name of an open-bus policy.
func ParseOpenBus(s string) (OpenBus, error) {
	switch s {
	case "", "last":
		return OpenBusLast, nil
	case "sentinel":
		return OpenBusSentinel, nil
	case "strict":
		return OpenBusStrict, nil
	}
	return 0, fmt.Errorf("invalid open bus policy %q", s)
}

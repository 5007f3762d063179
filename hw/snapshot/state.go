package snapshot

//go:generate go tool msgp -tests=false -marshal=false

// FormatVersion is the version of the save-state layout written by this
// package.
const FormatVersion uint16 = 2

// SaveState is a complete machine snapshot, taken at a macro-step boundary.
type SaveState struct {
	Version uint16
	System  string
	Rom     [20]byte
	Step    uint64

	Clocks     []Clock
	Rand       []byte
	BusLatch   uint8
	Components []Component
}

// Clock is the state of a component clock domain.
type Clock struct {
	Name      string
	Remainder uint64
	Debt      int64
	Cycles    uint64
}

// Component is the serialized state of one component.
type Component struct {
	Name    string
	Version uint16
	Data    []byte // msgp encoded, one of the component states below
}

// Find returns the record of the component called name.
func (s *SaveState) Find(name string) (*Component, bool) {
	for i := range s.Components {
		if s.Components[i].Name == name {
			return &s.Components[i], true
		}
	}
	return nil, false
}

type CPU struct {
	V     [16]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack [16]uint16

	Mode     uint8
	Exec     uint8
	WaitReg  uint8
	WaitKeys uint16
	Flags    [8]uint8
}

// Display planes are packed, 8 pixels per byte.
type Display struct {
	Hires      bool
	FrontHires bool
	Staging    []byte
	Front      []byte
}

type Timer struct {
	Value uint8
}

type Beeper struct {
	Value uint8
	Level int32
	Next  uint64

	// History holds the most recent ticks, oldest first.
	History []Tone
}

// Tone is the beeper state at the start of a tick.
type Tone struct {
	On    bool
	Level int32
	Next  uint64
}

type Mapper struct {
	Banks []int
}

type RAM struct {
	Data []byte
}

package hw

import "math/rand/v2"

// Rand is the machine random source. It is deterministic for a given seed
// and part of the save-state.
type Rand struct {
	pcg *rand.PCG
}

func NewRand(seed uint64) *Rand {
	return &Rand{pcg: rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)}
}

func (r *Rand) Uint64() uint64 { return r.pcg.Uint64() }

func (r *Rand) Uint8() uint8 { return uint8(r.pcg.Uint64() >> 56) }

func (r *Rand) MarshalBinary() ([]byte, error) { return r.pcg.MarshalBinary() }

// stage decodes a marshaled state without modifying r.
func (r *Rand) stage(data []byte) (func(), error) {
	var pcg rand.PCG
	if err := pcg.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return func() { *r.pcg = pcg }, nil
}

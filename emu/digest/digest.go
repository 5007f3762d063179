// Package digest computes chained fingerprints of the output of a machine,
// to compare runs.
package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"multiemu/hw"
)

// Digest fingerprints video and audio separately. Each frame is hashed
// along with the fingerprint of the previous one, so the final value
// depends on every frame and on their order.
type Digest struct {
	video  [sha1.Size]byte
	audio  [sha1.Size]byte
	buf    []byte
	frames int
}

// Add feeds the output of one macro-step.
func (d *Digest) Add(out hw.StepOutput) {
	if out.Frame != nil {
		d.AddFrame(out.Frame)
	}
	if out.Audio != nil {
		d.AddAudio(out.Audio)
	}
}

func (d *Digest) AddFrame(f *hw.FrameDescriptor) {
	// Chain fingerprints by prepending the previous one to the pixels.
	d.buf = append(d.buf[:0], d.video[:]...)
	d.buf = binary.BigEndian.AppendUint16(d.buf, uint16(f.Width))
	d.buf = binary.BigEndian.AppendUint16(d.buf, uint16(f.Height))
	line := f.Width * 4
	for y := range f.Height {
		d.buf = append(d.buf, f.Pix[y*f.Stride:y*f.Stride+line]...)
	}
	d.video = sha1.Sum(d.buf)
	d.frames++
}

func (d *Digest) AddAudio(a *hw.AudioDescriptor) {
	d.buf = append(d.buf[:0], d.audio[:]...)
	for _, s := range a.Samples {
		d.buf = binary.LittleEndian.AppendUint16(d.buf, uint16(s))
	}
	d.audio = sha1.Sum(d.buf)
}

// Frames returns the number of frames hashed so far.
func (d *Digest) Frames() int { return d.frames }

func (d *Digest) VideoHash() string { return fmt.Sprintf("%x", d.video) }

func (d *Digest) AudioHash() string { return fmt.Sprintf("%x", d.audio) }

// Hash combines the video and audio fingerprints.
func (d *Digest) Hash() string {
	return fmt.Sprintf("%x", sha1.Sum(append(d.video[:], d.audio[:]...)))
}

func (d *Digest) Reset() {
	*d = Digest{buf: d.buf[:0]}
}

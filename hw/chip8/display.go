package chip8

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"multiemu/emu/log"
	"multiemu/hw"
	"multiemu/hw/snapshot"
)

const (
	LoresWidth  = 64
	LoresHeight = 32
	HiresWidth  = 128
	HiresHeight = 64

	numPixels = HiresWidth * HiresHeight
	bands     = 4 // row bands composed in parallel
)

// Pixel colors, RGBA.
var (
	colorOn  = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
	colorOff = [4]byte{0x00, 0x00, 0x00, 0xFF}
)

// Display is the monochrome screen. The interpreter draws into a staging
// plane, copied to the visible one at each vertical blank.
type Display struct {
	ctx *hw.Context
	cpu hw.ComponentID

	clip          bool
	clearOnResize bool

	// Pixels are stored one per byte with a fixed stride of HiresWidth,
	// whatever the resolution.
	staging    [numPixels]byte
	front      [numPixels]byte
	hires      bool
	frontHires bool

	pix []byte
}

func newDisplay(ctx *hw.Context, q hw.Quirks) *Display {
	return &Display{
		ctx:           ctx,
		cpu:           hw.NoComponent,
		clip:          q.Bool(QuirkClipSprites),
		clearOnResize: q.Bool(QuirkClearOnResize),
		pix:           make([]byte, numPixels*4),
	}
}

func (d *Display) Reset(hard bool) {
	clear(d.staging[:])
	clear(d.front[:])
	d.hires, d.frontHires = false, false
}

func (d *Display) size() (w, h int) {
	if d.hires {
		return HiresWidth, HiresHeight
	}
	return LoresWidth, LoresHeight
}

// Hires reports whether the display is in 128x64 mode.
func (d *Display) Hires() bool { return d.hires }

func (d *Display) SetHires(on bool) {
	if on == d.hires {
		return
	}
	d.hires = on
	if d.clearOnResize {
		d.Clear()
	}
	log.ModVideo.DebugZ("resolution changed").Bool("hires", on).End()
}

func (d *Display) Clear() { clear(d.staging[:]) }

// Pixel reports whether the staging pixel at (x, y) is lit.
func (d *Display) Pixel(x, y int) bool { return d.staging[y*HiresWidth+x] != 0 }

// Draw xors a sprite at (vx, vy) and reports whether a lit pixel was
// turned off. Sprites are 8 pixels wide, one byte per row, or 16x16 with 2
// bytes per row when wide is set. The start position always wraps; what
// goes past the edges is clipped or wrapped depending on clip_sprites.
func (d *Display) Draw(vx, vy uint8, sprite []byte, wide bool) bool {
	w, h := d.size()
	x0, y0 := int(vx)%w, int(vy)%h

	cols, rows := 8, len(sprite)
	if wide {
		cols, rows = 16, len(sprite)/2
	}

	collision := false
	for r := range rows {
		y := y0 + r
		if y >= h {
			if d.clip {
				break
			}
			y %= h
		}

		var bits uint16
		if wide {
			bits = uint16(sprite[2*r])<<8 | uint16(sprite[2*r+1])
		} else {
			bits = uint16(sprite[r]) << 8
		}

		for c := range cols {
			if bits&(0x8000>>c) == 0 {
				continue
			}
			x := x0 + c
			if x >= w {
				if d.clip {
					break
				}
				x %= w
			}
			i := y*HiresWidth + x
			if d.staging[i] != 0 {
				collision = true
			}
			d.staging[i] ^= 1
		}
	}
	return collision
}

// ScrollDown scrolls the picture down by n lines.
func (d *Display) ScrollDown(n int) {
	w, h := d.size()
	for y := h - 1; y >= 0; y-- {
		row := d.staging[y*HiresWidth : y*HiresWidth+w]
		if y >= n {
			copy(row, d.staging[(y-n)*HiresWidth:(y-n)*HiresWidth+w])
		} else {
			clear(row)
		}
	}
}

// ScrollRight scrolls the picture right by 4 pixels.
func (d *Display) ScrollRight() {
	w, h := d.size()
	for y := range h {
		row := d.staging[y*HiresWidth : y*HiresWidth+w]
		copy(row[4:], row[:w-4])
		clear(row[:4])
	}
}

// ScrollLeft scrolls the picture left by 4 pixels.
func (d *Display) ScrollLeft() {
	w, h := d.size()
	for y := range h {
		row := d.staging[y*HiresWidth : y*HiresWidth+w]
		copy(row, row[4:])
		clear(row[w-4:])
	}
}

// Step commits the staging plane and signals the vertical blank to the
// interpreter.
func (d *Display) Step(budget int64) int64 {
	d.front = d.staging
	d.frontHires = d.hires
	if d.cpu != hw.NoComponent {
		d.ctx.Raise(hw.Signal{Kind: hw.SigVBlank, Target: d.cpu})
	}
	return budget
}

// Frame implements hw.VideoSource.
func (d *Display) Frame() hw.FrameDescriptor {
	w, h := LoresWidth, LoresHeight
	if d.frontHires {
		w, h = HiresWidth, HiresHeight
	}
	stride := w * 4
	pix := d.pix[:stride*h]

	rowsPerBand := h / bands
	err := d.ctx.Parallel(bands, func(band int) error {
		for y := band * rowsPerBand; y < (band+1)*rowsPerBand; y++ {
			line := pix[y*stride : (y+1)*stride]
			src := d.front[y*HiresWidth : y*HiresWidth+w]
			for x, on := range src {
				if on != 0 {
					copy(line[x*4:], colorOn[:])
				} else {
					copy(line[x*4:], colorOff[:])
				}
			}
		}
		return nil
	})
	if err != nil {
		log.ModVideo.ErrorZ("frame composition failed").Error("err", err).End()
	}

	return hw.FrameDescriptor{
		Width:  w,
		Height: h,
		Format: hw.RGBA8888,
		Stride: stride,
		Pix:    pix,
	}
}

func (d *Display) Inspect() []hw.Field {
	lit := 0
	for _, p := range d.front {
		lit += int(p)
	}
	return []hw.Field{
		{Name: "hires", Value: uint64(b2u8(d.hires)), Width: 1},
		{Name: "lit", Value: uint64(lit), Width: 16},
	}
}

const displayStateVersion = 1

func (d *Display) StateVersion() uint16 { return displayStateVersion }

func (d *Display) State() *snapshot.Display {
	return &snapshot.Display{
		Hires:      d.hires,
		FrontHires: d.frontHires,
		Staging:    packBits(d.staging[:]),
		Front:      packBits(d.front[:]),
	}
}

func (d *Display) SetState(st *snapshot.Display) {
	d.hires, d.frontHires = st.Hires, st.FrontHires
	unpackBits(d.staging[:], st.Staging)
	unpackBits(d.front[:], st.Front)
}

func (d *Display) SaveState(w *msgp.Writer) error { return d.State().EncodeMsg(w) }

func (d *Display) LoadState(version uint16, r *msgp.Reader) (func(), error) {
	var st snapshot.Display
	if err := st.DecodeMsg(r); err != nil {
		return nil, err
	}
	if len(st.Staging) != numPixels/8 || len(st.Front) != numPixels/8 {
		return nil, fmt.Errorf("%w: display planes of %d and %d bytes", snapshot.ErrCorruptSnapshot, len(st.Staging), len(st.Front))
	}
	return func() { d.SetState(&st) }, nil
}

func packBits(pixels []byte) []byte {
	out := make([]byte, len(pixels)/8)
	for i, p := range pixels {
		out[i/8] |= (p & 1) << (7 - i%8)
	}
	return out
}

func unpackBits(pixels, packed []byte) {
	for i := range pixels {
		pixels[i] = (packed[i/8] >> (7 - i%8)) & 1
	}
}

// Package rom loads ROM images and computes their identity.
package rom

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ID identifies a ROM image: the SHA-1 of its contents. Save-states and
// quirk tables are keyed by it.
type ID [sha1.Size]byte

// Identify returns the identity of a ROM image.
func Identify(data []byte) ID {
	return ID(sha1.Sum(data))
}

// String returns the lowercase hexadecimal form of id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ID) IsZero() bool { return id == ID{} }

// ParseID parses the hexadecimal form of an ID.
func ParseID(s string) (ID, error) {
	var id ID
	if len(s) != 2*len(id) {
		return id, fmt.Errorf("invalid rom id %q: want %d hex digits", s, 2*len(id))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid rom id %q: %w", s, err)
	}
	return id, nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	v, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// MaxSize is the largest ROM image accepted.
const MaxSize = 4 << 20

// Rom is a loaded ROM image.
type Rom struct {
	Path   string
	Name   string // file name without extension
	Data   []byte
	ID     ID
	System string // guessed from the extension, may be empty
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := &Rom{Path: path}
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("rom %s: %w", filepath.Base(path), err)
	}
	return rom, nil
}

// New creates a rom from in-memory data. The name, with its extension, is
// used to guess the system.
func New(name string, data []byte) *Rom {
	rom := &Rom{Path: name}
	rom.setData(data)
	return rom
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, fmt.Errorf("empty rom")
	}
	if len(buf) > MaxSize {
		return 0, fmt.Errorf("rom larger than %d bytes", MaxSize)
	}
	rom.setData(buf)
	return int64(len(buf)), nil
}

func (rom *Rom) setData(data []byte) {
	rom.Data = data
	rom.ID = Identify(data)
	base := filepath.Base(rom.Path)
	rom.Name = strings.TrimSuffix(base, filepath.Ext(base))
	rom.System = SystemFromPath(rom.Path)
}

var systemsByExt = map[string]string{
	".ch8": "chip8",
	".c8":  "chip8",
	".sc8": "schip",
}

// SystemFromPath guesses the system of a rom from its file extension. It
// returns an empty string for unknown extensions.
func SystemFromPath(path string) string {
	return systemsByExt[strings.ToLower(filepath.Ext(path))]
}

func (rom *Rom) String() string {
	return fmt.Sprintf("%s (%s, %d bytes, %s)", rom.Name, rom.ID, len(rom.Data), rom.System)
}

package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/tinylib/msgp/msgp"
)

// Binary record layout: magic, big-endian format version, then the
// zlib-compressed msgpack encoding of the SaveState.
var magic = [4]byte{'M', 'E', 'M', 'U'}

const headerSize = len(magic) + 2

// maxStateSize bounds the decompressed size of a record.
const maxStateSize = 64 << 20

// Encode writes the binary record of s to w.
func Encode(w io.Writer, s *SaveState) error {
	var hdr [headerSize]byte
	copy(hdr[:], magic[:])
	binary.BigEndian.PutUint16(hdr[len(magic):], s.Version)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	zw, err := zlib.NewWriterLevel(w, zlib.BestSpeed)
	if err != nil {
		return err
	}
	mw := msgp.NewWriter(zw)
	if err := s.EncodeMsg(mw); err != nil {
		return fmt.Errorf("encode save-state: %w", err)
	}
	if err := mw.Flush(); err != nil {
		return err
	}
	return zw.Close()
}

// Decode reads a binary record. Malformed data fails with
// ErrCorruptSnapshot and records of another format version with
// ErrVersionMismatch.
func Decode(r io.Reader) (*SaveState, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, Corrupt("header", err)
	}
	if !bytes.Equal(hdr[:len(magic)], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptSnapshot, hdr[:len(magic)])
	}
	if v := binary.BigEndian.Uint16(hdr[len(magic):]); v != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrVersionMismatch, v, FormatVersion)
	}

	zr, err := zlib.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, Corrupt("zlib", err)
	}
	defer zr.Close()

	lr := io.LimitReader(zr, maxStateSize)
	s := new(SaveState)
	if err := s.DecodeMsg(msgp.NewReader(lr)); err != nil {
		return nil, Corrupt("body", err)
	}
	// Drain the stream so the zlib checksum gets verified.
	if _, err := io.Copy(io.Discard, lr); err != nil {
		return nil, Corrupt("body", err)
	}
	if s.Version != FormatVersion {
		return nil, fmt.Errorf("%w: body version %d, header version %d", ErrCorruptSnapshot, s.Version, FormatVersion)
	}
	return s, nil
}

// Marshal returns the binary record of s.
func Marshal(s *SaveState) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Unmarshal(data []byte) (*SaveState, error) {
	return Decode(bytes.NewReader(data))
}

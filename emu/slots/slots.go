// Package slots persists save-states on disk, per rom and slot number.
package slots

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.etcd.io/bbolt"

	"multiemu/emu/log"
	"multiemu/hw/snapshot"
	"multiemu/rom"
)

// Slots numbered from 1 to MaxSlot are persisted. Slot 0 is the quick slot,
// it stays in memory.
const (
	QuickSlot = 0
	MaxSlot   = 9
)

var (
	ErrEmptySlot   = errors.New("empty save slot")
	ErrInvalidSlot = fmt.Errorf("invalid save slot, want 1 to %d", MaxSlot)
)

// Store is a save-state database. Each rom has its own bucket, named after
// its id, holding one encoded save-state per slot.
type Store struct {
	db *bbolt.DB
}

// Open opens, or creates, the database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("save-states database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Path() string { return s.db.Path() }

func checkSlot(slot int) error {
	if slot < 1 || slot > MaxSlot {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return nil
}

func slotKey(slot int) []byte {
	return binary.BigEndian.AppendUint16(nil, uint16(slot))
}

func bucketName(id rom.ID) []byte { return []byte(id.String()) }

// Save writes st in a slot, replacing what the slot contained.
func (s *Store) Save(slot int, st *snapshot.SaveState) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	buf, err := snapshot.Marshal(st)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(st.Rom))
		if err != nil {
			return err
		}
		return b.Put(slotKey(slot), buf)
	})
	if err != nil {
		return fmt.Errorf("save slot %d: %w", slot, err)
	}

	log.ModState.InfoZ("state saved").
		Stringer("rom", rom.ID(st.Rom)).
		Int("slot", slot).
		Int("size", len(buf)).
		End()
	return nil
}

// Load reads the save-state of a slot.
func (s *Store) Load(id rom.ID, slot int) (*snapshot.SaveState, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}

	var buf []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(id))
		if b == nil {
			return nil
		}
		// Values are only valid during the transaction.
		if v := b.Get(slotKey(slot)); v != nil {
			buf = slices.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, fmt.Errorf("%w %d", ErrEmptySlot, slot)
	}

	st, err := snapshot.Unmarshal(buf)
	if err != nil {
		return nil, fmt.Errorf("slot %d: %w", slot, err)
	}
	return st, nil
}

// Delete empties a slot. Deleting an empty slot isn't an error.
func (s *Store) Delete(id rom.ID, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(id))
		if b == nil {
			return nil
		}
		if err := b.Delete(slotKey(slot)); err != nil {
			return err
		}
		// Stats only counts what's committed, look at the keys themselves.
		if k, _ := b.Cursor().First(); k == nil {
			return tx.DeleteBucket(bucketName(id))
		}
		return nil
	})
}

// Info describes the content of a slot.
type Info struct {
	Slot   int
	Size   int
	System string
	Step   uint64
	Err    error // the slot can't be decoded
}

// List returns the used slots of a rom, in slot order.
func (s *Store) List(id rom.ID) ([]Info, error) {
	var infos []Info
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(id))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 2 {
				return fmt.Errorf("%w: invalid slot key %x", snapshot.ErrCorruptSnapshot, k)
			}
			info := Info{Slot: int(binary.BigEndian.Uint16(k)), Size: len(v)}
			if st, err := snapshot.Unmarshal(v); err != nil {
				info.Err = err
			} else {
				info.System, info.Step = st.System, st.Step
			}
			infos = append(infos, info)
			return nil
		})
	})
	return infos, err
}

// Roms returns the ids of the roms having at least one save-state.
func (s *Store) Roms() ([]rom.ID, error) {
	var ids []rom.ID
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			id, err := rom.ParseID(string(name))
			if err != nil {
				log.ModState.WarnZ("unexpected bucket in save-states database").
					String("name", string(name)).
					End()
				return nil
			}
			ids = append(ids, id)
			return nil
		})
	})
	return ids, err
}

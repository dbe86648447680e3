package playerdata

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Store reads and writes per-player data files under a world directory's
// playerdata/ subdirectory, per spec.md §4.B. The NBT codec itself is
// github.com/sandertv/gophertunnel/minecraft/nbt (already a dependency of
// this module's teacher lineage); Store only owns the gzip framing and
// file layout.
type Store struct {
	WorldDir string
}

// NewStore returns a Store rooted at worldDir.
func NewStore(worldDir string) *Store {
	return &Store{WorldDir: worldDir}
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.WorldDir, "playerdata", id.String()+".dat")
}

// Load reads and decodes the player-data file for id. It returns
// ErrNotFound if no such file exists, or ErrDecode (wrapping the
// underlying gzip/NBT error) if the file is unreadable as PlayerData.
func (s *Store) Load(id uuid.UUID) (*PlayerData, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("playerdata: open: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %v", ErrDecode, err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrDecode, err)
	}

	var data PlayerData
	if err := nbt.NewDecoderWithEncoding(bytes.NewReader(raw), nbt.BigEndian).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: nbt: %v", ErrDecode, err)
	}
	for i, slot := range data.Inventory {
		data.Inventory[i] = slot.Normalized()
	}
	return &data, nil
}

// Save gzip-compresses and writes data for id, creating the playerdata/
// directory if necessary. The write goes to a temporary file that is
// renamed over the target only after it is fully flushed, closing
// spec.md §9's "not crash-safe" gap: a process crash mid-write leaves the
// previous file intact instead of a truncated one.
func (s *Store) Save(id uuid.UUID, data *PlayerData) error {
	dir := filepath.Join(s.WorldDir, "playerdata")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("playerdata: mkdir: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := nbt.NewEncoderWithEncoding(gz, nbt.BigEndian).Encode(data); err != nil {
		return fmt.Errorf("playerdata: encode: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("playerdata: gzip flush: %w", err)
	}

	target := s.path(id)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("playerdata: write temp file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("playerdata: rename: %w", err)
	}
	return nil
}

package playerdata

import "errors"

// Error kinds for PlayerDataStore, per spec.md §7. FileNotFound is kept
// distinct from the general IoError so callers can fall back to a
// default profile instead of treating a missing file as fatal.
var (
	// ErrNotFound indicates no player-data file exists for the requested UUID.
	ErrNotFound = errors.New("playerdata: not found")
	// ErrDecode indicates the file exists but its gzip/NBT contents could not be parsed.
	ErrDecode = errors.New("playerdata: decode error")
)

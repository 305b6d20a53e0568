// README: Shared value types used across modules.
package types

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ID is an opaque entity identifier (32-char hex from the generator).
type ID string

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Audit carries identity and bookkeeping timestamps embedded by every entity.
type Audit struct {
	ID        ID        `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewID returns a random 32-char hex identifier.
func NewID() ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return ID(hex.EncodeToString(b[:]))
}

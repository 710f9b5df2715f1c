package entity

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// IDLength is the length of every stored identifier.
const IDLength = 24

// NewID returns a time-ordered 24 character hex identifier built from the
// leading 12 bytes of a UUIDv7.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return hex.EncodeToString(id[:IDLength/2])
}

// IsID reports whether s has the identifier format.
func IsID(s string) bool {
	if len(s) != IDLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// NormalizeID lower-cases a client supplied identifier.
func NormalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID32 mints the public identity for books, users and loans: 32 lowercase
// hex characters, no separators. The numeric primary keys never leave the
// storage layer.
func NewID32() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

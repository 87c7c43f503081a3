package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ID prefixes.
const (
	PrefixProduct  = "prd"
	PrefixField    = "fld"
	PrefixPreOrder = "po"
	PrefixMessage  = "msg"
)

// NewID returns prefix_ followed by 32 random hex characters.
func NewID(prefix string) string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return prefix + "_" + hex.EncodeToString(buf)
}

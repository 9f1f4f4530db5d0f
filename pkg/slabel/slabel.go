// Package slabel defines space name labels: normalization, DNS-style
// encoding, and the protocol hash used to look spaces up by content hash.
package slabel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Sigil is the reserved prefix marking a space name.
const Sigil = "@"

// MaxLabelLen is the maximum length of the label in bytes, excluding
// the sigil. Matches the single-label DNS limit.
const MaxLabelLen = 62

// Normalize lower-cases a space name and prefixes the sigil unless it
// is already present. Idempotent.
func Normalize(space string) string {
	lower := strings.ToLower(space)
	if strings.HasPrefix(lower, Sigil) {
		return lower
	}
	return Sigil + lower
}

// SLabel is a validated, normalized space name.
type SLabel struct {
	name string
}

// New normalizes and validates a space name.
func New(space string) (SLabel, error) {
	name := Normalize(space)
	label := name[len(Sigil):]

	if len(label) == 0 {
		return SLabel{}, fmt.Errorf("space name is empty")
	}
	if len(label) > MaxLabelLen {
		return SLabel{}, fmt.Errorf("space name exceeds %d bytes", MaxLabelLen)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return SLabel{}, fmt.Errorf("space name cannot start or end with a hyphen")
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return SLabel{}, fmt.Errorf("space name contains invalid character %q", label[i])
	}

	return SLabel{name: name}, nil
}

// String returns the normalized name including the sigil.
func (s SLabel) String() string {
	return s.name
}

// Bytes returns the DNS-style encoding: a length octet followed by the
// label bytes, sigil excluded.
func (s SLabel) Bytes() []byte {
	label := s.name[len(Sigil):]
	out := make([]byte, 0, len(label)+1)
	out = append(out, byte(len(label)))
	return append(out, label...)
}

// Hash returns the SHA-256 digest of the encoded label.
func (s SLabel) Hash() [sha256.Size]byte {
	return sha256.Sum256(s.Bytes())
}

// HashHex normalizes, encodes, and hashes a space name, returning the
// digest as a hex string.
func HashHex(space string) (string, error) {
	s, err := New(space)
	if err != nil {
		return "", err
	}
	digest := s.Hash()
	return hex.EncodeToString(digest[:]), nil
}

// Package ids generates record identifiers.
package ids

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New returns a 26-character lowercase base32 encoding of a random UUIDv4.
// The alphabet never contains '-', which session tokens use as a separator.
func New() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}

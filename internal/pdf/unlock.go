// Package pdf opens statement documents: it recovers numeric passwords for
// encrypted files and yields per-page plain text for the extraction
// fan-out.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// ErrPasswordNotFound means the numeric search space was exhausted without
// opening the document. Callers must treat this as terminal for the file:
// skip it, do not retry.
var ErrPasswordNotFound = errors.New("pdf: password not found")

// DefaultMaxPasswordLength bounds the numeric brute force. Bank-issued
// statements are commonly protected with short numeric PINs; this is a
// deliberate scope limitation, not a general password cracker.
const DefaultMaxPasswordLength = 9

// ProbeFunc attempts to open a document with one password and returns nil
// on success.
type ProbeFunc func(password string) error

// Unlocker searches the numeric password space of a protected document.
type Unlocker struct {
	log zerolog.Logger

	// MaxPasswordLength is the largest candidate length tried. Defaults to
	// DefaultMaxPasswordLength.
	MaxPasswordLength int
}

// NewUnlocker creates an Unlocker with the default search bounds.
func NewUnlocker(log zerolog.Logger) *Unlocker {
	return &Unlocker{
		log:               log,
		MaxPasswordLength: DefaultMaxPasswordLength,
	}
}

// Unlock returns the first password that opens the document.
//
// A known password (from a previous unlock of the same file) is attempted
// first and short-circuits the search. An unencrypted document yields the
// empty password, not ErrPasswordNotFound. Otherwise every zero-padded
// integer of length 1..MaxPasswordLength is tried in ascending numeric
// order.
func (u *Unlocker) Unlock(ctx context.Context, probe ProbeFunc, knownPassword *string) (string, error) {
	if knownPassword != nil {
		if err := probe(*knownPassword); err == nil {
			return *knownPassword, nil
		}
		u.log.Warn().Msg("cached password no longer opens document, searching")
	}

	// Empty probe first: an unencrypted document opens without any
	// password at all.
	if err := probe(""); err == nil {
		return "", nil
	}

	limit := int64(1)
	for length := 1; length <= u.MaxPasswordLength; length++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		limit *= 10
		for n := int64(0); n < limit; n++ {
			candidate := fmt.Sprintf("%0*d", length, n)
			if err := probe(candidate); err == nil {
				u.log.Info().Int("length", length).Msg("document password recovered")
				return candidate, nil
			}
		}
	}
	return "", ErrPasswordNotFound
}

// DocumentProbe builds a ProbeFunc over raw PDF bytes.
func DocumentProbe(data []byte) ProbeFunc {
	return func(password string) error {
		_, err := open(data, password)
		return err
	}
}

func open(data []byte, password string) (*pdflib.Reader, error) {
	attempts := 0
	return pdflib.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), func() string {
		attempts++
		if attempts > 1 {
			// One candidate per probe; returning "" stops the reader from
			// asking again.
			return ""
		}
		return password
	})
}

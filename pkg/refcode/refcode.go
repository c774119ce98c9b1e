// Package refcode generates human-friendly booking reference codes.
package refcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Charset deliberately excludes 0/O and 1/I so references survive being
// read over the phone or copied by hand.
const Charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the number of random characters after the prefix
const CodeLength = 6

// Generate builds a reference like "BUS-K7NQ2M" from a 3-letter prefix.
func Generate(prefix string) (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reference: %w", err)
	}

	var sb strings.Builder
	for _, b := range buf {
		sb.WriteByte(Charset[int(b)%len(Charset)])
	}

	return fmt.Sprintf("%s-%s", strings.ToUpper(prefix), sb.String()), nil
}

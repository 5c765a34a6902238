// Package commitment implements the commit-reveal scheme binding an
// operator to a winning number chosen before any ticket is sold. The
// commitment is a sha256 digest over the number, a secret, and the room,
// operator and round identities, so a leaked secret cannot be replayed
// across rooms or rounds.
package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// DigestHexLen is the length of a hex-encoded commitment.
const DigestHexLen = sha256.Size * 2

// Compute returns the hex-encoded commitment digest for the given tuple.
func Compute(number int, secret, roomID, operatorID string, round int64) string {
	data := fmt.Sprintf("%d|%s|%s|%s|%d", number, secret, roomID, operatorID, round)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest for the revealed number and secret and
// compares it to the stored commitment. Comparison is constant-time.
func Verify(stored string, number int, secret, roomID, operatorID string, round int64) bool {
	if len(stored) != DigestHexLen {
		return false
	}
	recomputed := Compute(number, secret, roomID, operatorID, round)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(recomputed)) == 1
}

// IsWellFormed reports whether s looks like a hex sha256 digest. Used to
// reject malformed commitments at room creation rather than at reveal.
func IsWellFormed(s string) bool {
	if len(s) != DigestHexLen {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// GenerateSecret creates a cryptographically secure random secret for an
// operator preparing a commitment.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// JoinCodeAlphabet is the character set of team join codes.
const JoinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// JoinCodeLength is the fixed length of a team join code.
const JoinCodeLength = 6

// admissionTokenBytes gives 192 bits of entropy to the random part of a token.
const admissionTokenBytes = 24

// GenerateRandomString produces a cryptographically random base64url string of n bytes.
func GenerateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateJoinCode generates a 6-character uppercase alphanumeric team code.
func GenerateJoinCode() (string, error) {
	max := big.NewInt(int64(len(JoinCodeAlphabet)))
	code := make([]byte, JoinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = JoinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// GenerateAdmissionToken builds an opaque admission token: a base36 millisecond
// timestamp followed by a random base64url suffix.
func GenerateAdmissionToken(now time.Time) (string, error) {
	suffix, err := GenerateRandomString(admissionTokenBytes)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + "." + suffix, nil
}

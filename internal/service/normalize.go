package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"biliticket/admission/pkg/crypto"
)

// maxGenerateAttempts bounds regenerate-on-collision loops for team codes,
// admission tokens and booking inserts racing a cancellation.
const maxGenerateAttempts = 5

const maxTeamNameLength = 64

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func normalizeEventID(eventID string) (string, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return "", ErrInvalidEventID
	}
	return eventID, nil
}

func normalizeTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxTeamNameLength {
		return "", ErrInvalidTeamName
	}
	return name, nil
}

// normalizeCode uppercases a join code so matching is case-insensitive.
func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != crypto.JoinCodeLength {
		return "", ErrMalformedCode
	}
	for _, r := range code {
		if !strings.ContainsRune(crypto.JoinCodeAlphabet, r) {
			return "", ErrMalformedCode
		}
	}
	return code, nil
}

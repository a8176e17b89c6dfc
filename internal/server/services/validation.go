package services

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
)

const (
	minUsernameLength = 4
	maxUsernameLength = 20
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
	maxPasswordBytes  = 72
	maxProjectNameLen = 50
	// Matches the users.email column width.
	maxEmailBytes = 320
)

func validateRegistration(username, email, password string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return common.NewValidationError("username", "must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if len(email) > maxEmailBytes || !isEmail(email) {
		return common.NewValidationError("email", "must be a valid email address")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return common.NewValidationError("password", "must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return common.NewValidationError("password", "must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func validateLogin(username, password string) error {
	if username == "" {
		return common.NewValidationError("username", "must not be empty")
	}
	if password == "" {
		return common.NewValidationError("password", "must not be empty")
	}
	return nil
}

// isEmail accepts a bare addr-spec whose domain has at least one dot.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func validateProjectName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return common.NewValidationError("name", "must not be empty")
	}
	if n > maxProjectNameLen {
		return common.NewValidationError("name", "must be at most %d characters", maxProjectNameLen)
	}
	return nil
}

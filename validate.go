package linkly

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
)

const (
	minNameLength     = 2
	maxNameLength     = 50
	minPasswordLength = 6
)

var (
	namePattern     = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	passwordPattern = []*regexp.Regexp{
		regexp.MustCompile(`[a-z]`),
		regexp.MustCompile(`[A-Z]`),
		regexp.MustCompile(`\d`),
	}
)

func validateName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return &ValidationError{Field: "name", Message: "name is required"}
	case len(name) < minNameLength:
		return &ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	case len(name) > maxNameLength:
		return &ValidationError{Field: "name", Message: "name must be less than 50 characters"}
	case !namePattern.MatchString(name):
		return &ValidationError{Field: "name", Message: "name can only contain letters and spaces"}
	}
	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "please enter a valid email address"}
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}

// validateNewPassword applies the registration strength rules on top of
// validatePassword.
func validateNewPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	for _, p := range passwordPattern {
		if !p.MatchString(password) {
			return &ValidationError{
				Field:   "password",
				Message: "password must contain at least one uppercase letter, one lowercase letter, and one number",
			}
		}
	}
	return nil
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &ValidationError{Field: "url", Message: "please enter a URL"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "url", Message: "please enter a valid URL (include http:// or https://)"}
	}
	return nil
}

func validateShortCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return &ValidationError{Field: "code", Message: "short code is required"}
	}
	return nil
}

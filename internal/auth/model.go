package auth

import (
	"fmt"
	"regexp"

	appErrors "github.com/pasalkarvaibhavi/fintrack/errors"
)

const (
	MAX_LENGTH_NAME     = 255
	MAX_LENGTH_EMAIL    = 255
	MIN_PASSWORD_LENGTH = 6
	MAX_PASSWORD_LENGTH = 72
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9](\.?[a-zA-Z0-9_%+-])*@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)*\.[a-zA-Z]{2,}$`)

type Registration struct {
	Name          string
	Email         string
	PasswordPlain string
}

func (r Registration) Validate() error {
	if r.Name == "" {
		return appErrors.New(appErrors.ErrInvalidInput, "Name cannot be empty!")
	}
	if len(r.Name) > MAX_LENGTH_NAME {
		return appErrors.New(appErrors.ErrInvalidInput, fmt.Sprintf("Name so long, maximum length is %d", MAX_LENGTH_NAME))
	}
	if r.Email == "" {
		return appErrors.New(appErrors.ErrInvalidInput, "Email cannot be empty!")
	}
	if !emailRegex.MatchString(r.Email) {
		return appErrors.New(appErrors.ErrInvalidInput, "Invalid email format, example valid email: john.doe@gmail.com")
	}
	if len(r.Email) > MAX_LENGTH_EMAIL {
		return appErrors.New(appErrors.ErrInvalidInput, fmt.Sprintf("Email so long, maximum length is %d", MAX_LENGTH_EMAIL))
	}
	return ValidatePassword(r.PasswordPlain)
}

func ValidatePassword(plain string) error {
	if plain == "" {
		return appErrors.New(appErrors.ErrInvalidInput, "Password cannot be empty!")
	}
	if len(plain) < MIN_PASSWORD_LENGTH {
		return appErrors.New(appErrors.ErrInvalidInput, fmt.Sprintf("Password so short, minimum length is %d", MIN_PASSWORD_LENGTH))
	}
	if len(plain) > MAX_PASSWORD_LENGTH {
		return appErrors.New(appErrors.ErrInvalidInput, fmt.Sprintf("Password so long, maximum length is %d", MAX_PASSWORD_LENGTH))
	}
	return nil
}

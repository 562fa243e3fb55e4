package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/baharkarakas/hbnb-api/internal/validate"
)

const (
	NameMinLen     = 2
	NameMaxLen     = 50
	PasswordMinLen = 6
	// bcrypt ignores (and x/crypto rejects) input past 72 bytes
	PasswordMaxLen = 72
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the owner projection embedded in place details.
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// Validate checks the stored shape of a user. The password is validated
// separately because only its hash is kept on the struct.
func (u User) Validate() error { return u.FieldErrs().Err() }

// FieldErrs lists the field errors of u; callers may append more before
// calling Err.
func (u User) FieldErrs() validate.Errs {
	var errs validate.Errs
	errs.Add(ValidateEmail(u.Email))
	errs.Add(validate.Length("first_name", u.FirstName, NameMinLen, NameMaxLen))
	errs.Add(validate.Length("last_name", u.LastName, NameMinLen, NameMaxLen))
	return errs
}

type NewUser struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
}

// TouchesCredentials reports whether the patch changes anything beyond the names.
func (p UserPatch) TouchesCredentials() bool {
	return p.Email != nil || p.Password != nil || p.IsAdmin != nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) *validate.ErrField {
	if ef := validate.Required("email", email); ef != nil {
		return ef
	}
	if !emailRe.MatchString(email) {
		return &validate.ErrField{Field: "email", Msg: "invalid format"}
	}
	return nil
}

func ValidatePassword(password string) *validate.ErrField {
	if password == "" {
		return &validate.ErrField{Field: "password", Msg: "required"}
	}
	if len(password) < PasswordMinLen {
		return &validate.ErrField{Field: "password", Msg: "must be at least 6 characters"}
	}
	if len(password) > PasswordMaxLen {
		return &validate.ErrField{Field: "password", Msg: "must be at most 72 bytes"}
	}
	return nil
}

// Package validate checks the login, signup and profile forms before any
// request is made. Checks run in field order and only the first failure is
// reported.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
)

const MinPasswordLength = 8

var (
	namePattern  = regexp.MustCompile(`^[a-z A-Z]+$`)
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
)

type LoginForm struct {
	Email    string `form:"email" validate:"notblank,email_format"`
	Password string `form:"password" validate:"notblank,min=8"`
}

type SignupForm struct {
	Name           string `form:"name" validate:"notblank,person_name"`
	Email          string `form:"email" validate:"notblank,email_format"`
	Password       string `form:"password" validate:"notblank,min=8"`
	VerifyPassword string `form:"verify_password" validate:"eqfield=Password"`
}

type ProfileForm struct {
	Name           string `form:"name" validate:"notblank,person_name"`
	Email          string `form:"email" validate:"notblank,email_format"`
	ProfileInfo    string `form:"profile_info"`
	Password       string `form:"password" validate:"notblank,min=8"`
	VerifyPassword string `form:"verify_password" validate:"eqfield=Password"`
}

// Error is a failed check; Message is shown to the user as is.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var messages = map[string]string{
	"Name.notblank":          "validate_name_missing",
	"Name.person_name":       "validate_name_invalid",
	"Email.notblank":         "validate_email_missing",
	"Email.email_format":     "validate_email_invalid",
	"Password.notblank":      "validate_password_missing",
	"Password.min":           "validate_password_too_short",
	"VerifyPassword.eqfield": "validate_password_mismatch",
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		instance.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
			return namePattern.MatchString(fl.Field().String())
		})
		instance.RegisterValidation("email_format", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
	})
	return instance
}

func Login(f LoginForm) error     { return check(f) }
func Signup(f SignupForm) error   { return check(f) }
func Profile(f ProfileForm) error { return check(f) }

func check(form any) error {
	err := get().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	first := fieldErrs[0]
	id, ok := messages[first.Field()+"."+first.Tag()]
	if !ok {
		return &Error{Field: first.Field(), Message: first.Error()}
	}
	return &Error{Field: first.Field(), Message: i18n.T(id)}
}

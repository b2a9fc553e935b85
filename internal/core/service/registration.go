package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

// RegistrationForm is what a user fills in to create an account.
type RegistrationForm struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	FarmName        string
	Password        string
	ConfirmPassword string
}

// registrationCheck is validated field by field in declaration order; the
// first failing field is reported.
type registrationCheck struct {
	Username        string `json:"username"         validate:"required"`
	Email           string `json:"email"            validate:"required"`
	FirstName       string `json:"first_name"       validate:"required"`
	LastName        string `json:"last_name"        validate:"required"`
	FarmName        string `json:"farm_name"        validate:"required_if=Farmer true"`
	Password        string `json:"password"         validate:"min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	Farmer          bool   `json:"-"`
}

var registrationMessages = map[string]string{
	"username":         "Username is required.",
	"email":            "Email is required.",
	"first_name":       "First name is required.",
	"last_name":        "Last name is required.",
	"farm_name":        "Farm name is required.",
	"password":         "Password must be at least 8 characters.",
	"confirm_password": "Passwords do not match.",
}

var registrationValidator = newRegistrationValidator()

func newRegistrationValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRegistration checks the form before anything is sent to the
// backend. It returns a *domain.ValidationError for the first failing field.
func ValidateRegistration(form RegistrationForm, role domain.Role) error {
	check := registrationCheck{
		Username:        strings.TrimSpace(form.Username),
		Email:           strings.TrimSpace(form.Email),
		FirstName:       strings.TrimSpace(form.FirstName),
		LastName:        strings.TrimSpace(form.LastName),
		FarmName:        strings.TrimSpace(form.FarmName),
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Farmer:          role == domain.RoleFarmer,
	}

	err := registrationValidator.Struct(check)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	field := ve[0].Field()
	msg, ok := registrationMessages[field]
	if !ok {
		msg = field + " is invalid."
	}
	return &domain.ValidationError{Field: field, Message: msg}
}

// toRegistrationInput trims the identity fields; the password is sent as typed.
func toRegistrationInput(form RegistrationForm, role domain.Role) ports.RegistrationInput {
	in := ports.RegistrationInput{
		Username:  strings.TrimSpace(form.Username),
		Email:     strings.TrimSpace(form.Email),
		Password:  form.Password,
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
	}
	if role == domain.RoleFarmer {
		in.FarmName = strings.TrimSpace(form.FarmName)
	}
	return in
}

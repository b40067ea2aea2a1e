package validation

import (
	"fmt"
	"io"
	"strings"

	"task-manager/internal/config"
)

const loginSchema = `{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": {"type": "string", "minLength": 1},
		"password": {"type": "string", "minLength": 1}
	}
}`

const registrationSchema = `{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": {"type": "string", "format": "email", "maxLength": 254},
		"password": {"type": "string", "minLength": %d, "maxLength": 72}
	}
}`

// Credentials is a validated email and password pair
type Credentials struct {
	Email    string
	Password string
}

// UserValidator validates login and registration payloads
type UserValidator struct {
	login    *requestSchema
	register *requestSchema
}

// NewUserValidator creates a user validator using default bounds
func NewUserValidator() *UserValidator {
	return NewUserValidatorWithConfig(nil)
}

// NewUserValidatorWithConfig creates a user validator with the configured password length
func NewUserValidatorWithConfig(cfg *config.Config) *UserValidator {
	minPassword := NewValidatorWithConfig(cfg).PasswordMinLength()
	types := map[string]string{"email": "string", "password": "string"}

	return &UserValidator{
		login: &requestSchema{
			schema:   compile("login.json", loginSchema),
			fields:   []string{"email", "password"},
			required: []string{"email", "password"},
			types:    types,
			lengths:  map[string][2]int{"email": {1, 0}, "password": {1, 0}},
		},
		register: &requestSchema{
			schema:   compile("registration.json", fmt.Sprintf(registrationSchema, minPassword)),
			fields:   []string{"email", "password"},
			required: []string{"email", "password"},
			types:    types,
			// bcrypt only uses the first 72 bytes of a password
			lengths: map[string][2]int{"email": {0, 254}, "password": {minPassword, 72}},
			formats: map[string]string{"email": "email address"},
		},
	}
}

// ValidateLogin decodes and validates a login request body
func (uv *UserValidator) ValidateLogin(body io.Reader) (Credentials, error) {
	doc, err := decode(body)
	if err != nil {
		return Credentials{}, err
	}
	trimField(doc, "email")
	if ve := uv.login.check(doc); ve != nil {
		return Credentials{}, failed(ve)
	}
	return credentialsFrom(doc), nil
}

// ValidateRegistration validates the details of a new account
func (uv *UserValidator) ValidateRegistration(email, password string) (Credentials, error) {
	doc := map[string]interface{}{
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	if ve := uv.register.check(doc); ve != nil {
		return Credentials{}, failed(ve)
	}
	return credentialsFrom(doc), nil
}

func credentialsFrom(doc interface{}) Credentials {
	obj := doc.(map[string]interface{})
	return Credentials{
		Email:    strings.ToLower(obj["email"].(string)),
		Password: obj["password"].(string),
	}
}

// Copyright (c) 2025 Insightst
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	apperrors "insightst/cli/internal/errors"
)

// MaxSecretLength is the longest secret the service accepts.
const MaxSecretLength = 64

// Credentials is the login input.
type Credentials struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// Validate checks the input before any network call.
func (c Credentials) Validate() error {
	return userError(validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Secret, validation.Required),
	), "email", "secret")
}

// Registration is the create-account input. Confirm must repeat Secret.
type Registration struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Secret  string `json:"secret"`
	Confirm string `json:"confirm"`
}

// Validate checks the input against minSecret and MaxSecretLength.
func (r Registration) Validate(minSecret int) error {
	return userError(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Secret, validation.Required, validation.Length(minSecret, MaxSecretLength)),
		validation.Field(&r.Confirm, validation.By(equals(r.Secret))),
	), "name", "email", "secret", "confirm")
}

func equals(want string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != want {
			return errors.New("secrets do not match")
		}
		return nil
	}
}

// userError turns ozzo field errors into a single User error naming the
// first failing field in order.
func userError(err error, order ...string) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return apperrors.Wrap(apperrors.User, err.Error(), err)
	}
	for _, name := range order {
		if fe, ok := fields[name]; ok && fe != nil {
			msg := fmt.Sprintf("%s: %s", label(name), fe.Error())
			return apperrors.Wrap(apperrors.User, msg, err)
		}
	}
	return apperrors.Wrap(apperrors.User, err.Error(), err)
}

func label(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

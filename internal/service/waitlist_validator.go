package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/byebilly/waitlist-api/internal/dto"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
)

const emailTag = "waitlist_email"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EnrollmentInput is a validated, normalised enrollment request.
type EnrollmentInput struct {
	Email string  `validate:"required,max=255,waitlist_email"`
	Name  *string `validate:"omitempty,max=255"`
}

// WaitlistValidator turns raw enrollment payloads into EnrollmentInput.
type WaitlistValidator struct {
	validate *validator.Validate
}

// NewWaitlistValidator registers the waitlist_email tag on validate.
func NewWaitlistValidator(validate *validator.Validate) (*WaitlistValidator, error) {
	if validate == nil {
		validate = validator.New()
	}
	if err := validate.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}
	return &WaitlistValidator{validate: validate}, nil
}

// Validate checks types first, then normalises and applies the struct rules.
func (v *WaitlistValidator) Validate(req dto.EnrollRequest) (*EnrollmentInput, error) {
	var email string
	switch raw := req.Email.(type) {
	case nil:
		return nil, invalidInput("email is required")
	case string:
		email = strings.ToLower(strings.TrimSpace(raw))
	default:
		return nil, invalidInput("email must be a string")
	}

	var name *string
	switch raw := req.Name.(type) {
	case nil:
	case string:
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			name = &trimmed
		}
	default:
		return nil, invalidInput("name must be a string")
	}

	input := &EnrollmentInput{Email: email, Name: name}
	if err := v.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Kind, appErrors.ErrInvalidInput.Status, fieldMessage(fieldErrs[0]))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Kind, appErrors.ErrInvalidInput.Status, "invalid enrollment payload")
	}
	return input, nil
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case emailTag:
		return "invalid email address"
	}
	return "invalid " + field
}

func invalidInput(message string) error {
	return appErrors.Clone(appErrors.ErrInvalidInput, message)
}

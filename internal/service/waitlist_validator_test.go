package service

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byebilly/waitlist-api/internal/dto"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
)

func newTestValidator(t *testing.T) *WaitlistValidator {
	v, err := NewWaitlistValidator(validator.New())
	require.NoError(t, err)
	return v
}

func TestWaitlistValidatorNormalises(t *testing.T) {
	v := newTestValidator(t)

	input, err := v.Validate(dto.EnrollRequest{Email: "  Alice@Example.COM ", Name: "  Alice  "})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", input.Email)
	require.NotNil(t, input.Name)
	assert.Equal(t, "Alice", *input.Name)
}

func TestWaitlistValidatorBlankNameIsAbsent(t *testing.T) {
	v := newTestValidator(t)

	for _, name := range []interface{}{nil, "", "   "} {
		input, err := v.Validate(dto.EnrollRequest{Email: "bob@example.com", Name: name})
		require.NoError(t, err)
		assert.Nil(t, input.Name)
	}
}

func TestWaitlistValidatorRejects(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name    string
		req     dto.EnrollRequest
		message string
	}{
		{"missing email", dto.EnrollRequest{}, "email is required"},
		{"empty email", dto.EnrollRequest{Email: ""}, "email is required"},
		{"whitespace email", dto.EnrollRequest{Email: "   "}, "email is required"},
		{"numeric email", dto.EnrollRequest{Email: 42.0}, "email must be a string"},
		{"object email", dto.EnrollRequest{Email: map[string]interface{}{"a": "b"}}, "email must be a string"},
		{"no at sign", dto.EnrollRequest{Email: "alice.example.com"}, "invalid email address"},
		{"no dot in domain", dto.EnrollRequest{Email: "a@b"}, "invalid email address"},
		{"inner whitespace", dto.EnrollRequest{Email: "al ice@example.com"}, "invalid email address"},
		{"double at", dto.EnrollRequest{Email: "a@@example.com"}, "invalid email address"},
		{"non-string name", dto.EnrollRequest{Email: "a@example.com", Name: 7.0}, "name must be a string"},
		{"boolean name", dto.EnrollRequest{Email: "a@example.com", Name: true}, "name must be a string"},
		{"long email", dto.EnrollRequest{Email: strings.Repeat("a", 250) + "@x.com"}, "email must be at most 255 characters"},
		{"long name", dto.EnrollRequest{Email: "a@example.com", Name: strings.Repeat("n", 256)}, "name must be at most 255 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
			assert.Equal(t, tc.message, appErrors.FromError(err).Message)
		})
	}
}

func TestWaitlistValidatorAcceptsBoundaryLengths(t *testing.T) {
	v := newTestValidator(t)

	email := strings.Repeat("a", 249) + "@x.com"
	require.Len(t, email, 255)
	input, err := v.Validate(dto.EnrollRequest{Email: email, Name: strings.Repeat("é", 255)})
	require.NoError(t, err)
	assert.Equal(t, email, input.Email)
}

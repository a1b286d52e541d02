package auth

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is used to interpret contact numbers entered without a
// country prefix before the ten-digit rule is applied.
const defaultPhoneRegion = "US"

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate checks that both fields are present. This runs before any
// network call; no other rules apply to login.
func (r LoginRequest) Validate() error {
	err := validation.Errors{
		"email":    validation.Validate(r.Email, validation.Required),
		"password": validation.Validate(r.Password, validation.Required),
	}.Filter()

	if err != nil {
		return cloneWithMetadata(ErrMissingFields, map[string]any{
			"fields": FormatValidationErrorToMap(err),
		})
	}
	return nil
}

// SignupRequest payload
type SignupRequest struct {
	FullName        string `form:"full_name" json:"full_name"`
	Email           string `form:"email" json:"email"`
	ContactNumber   string `form:"contact_number" json:"contact_number"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	Role            Role   `form:"role" json:"role"`
}

// Validate applies the signup rules in order: required fields, matching
// passwords, a ten-digit contact number, then password complexity. The
// first failing rule is the only one reported.
func (r SignupRequest) Validate() error {
	err := validation.Errors{
		"full_name": validation.Validate(r.FullName, validation.Required),
		"email":     validation.Validate(r.Email, validation.Required, is.Email),
		"password":  validation.Validate(r.Password, validation.Required),
	}.Filter()
	if err != nil {
		return cloneWithMetadata(ErrMissingFields, map[string]any{
			"fields": FormatValidationErrorToMap(err),
		})
	}

	if !r.Role.IsValid() {
		return cloneWithMetadata(ErrInvalidRole, map[string]any{"role": string(r.Role)})
	}

	if err := validation.Validate(r.ConfirmPassword, validation.By(ValidateStringEquals(r.Password))); err != nil {
		return ErrPasswordMismatch
	}

	if err := validation.Validate(
		NormalizeContactNumber(r.ContactNumber),
		validation.Required,
		validation.Length(10, 10),
		is.Digit,
	); err != nil {
		return ErrInvalidContactNumber
	}

	if err := validation.Validate(r.Password, validation.By(passwordComplexity)); err != nil {
		return ErrWeakPassword
	}

	return nil
}

// Submission returns the normalized payload sent to the verifier. The
// confirmation password never leaves the client.
func (r SignupRequest) Submission() SignupSubmission {
	return SignupSubmission{
		FullName:      strings.TrimSpace(r.FullName),
		Email:         normalizeEmail(r.Email),
		ContactNumber: NormalizeContactNumber(r.ContactNumber),
		Password:      r.Password,
		Role:          r.Role,
	}
}

// NormalizeContactNumber reduces a phone number to its national digits.
// Recognizable numbers go through libphonenumber so "+1 (555) 010-9238"
// and "5550109238" normalize identically; anything else keeps its digits
// as entered.
func NormalizeContactNumber(raw string) string {
	if num, err := phonenumbers.Parse(raw, defaultPhoneRegion); err == nil && phonenumbers.IsValidNumber(num) {
		return strconv.FormatUint(num.GetNationalNumber(), 10)
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// passwordComplexity enforces at least one lowercase letter, one uppercase
// letter, one digit and one symbol.
func passwordComplexity(value any) error {
	s, _ := value.(string)

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	if !lower || !upper || !digit || !symbol {
		return errors.New("must include a lowercase letter, an uppercase letter, a digit and a symbol")
	}
	return nil
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field -> message map for templates.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		if err != nil {
			out["form"] = err.Error()
		}
		return out
	}
	for field, ferr := range fields {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

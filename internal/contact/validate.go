// internal/contact/validate.go
package contact

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dalemusser/contactmail/internal/apperr"
	"github.com/go-playground/validator/v10"
)

// phoneRegex allows digits, spaces and common phone punctuation.
var phoneRegex = regexp.MustCompile(`^[0-9+().\-\s]{7,20}$`)

const minPhoneDigits = 7

var fieldLabels = map[string]string{
	"firstName": "First name",
	"lastName":  "Last name",
	"email":     "Email",
	"phone":     "Phone number",
	"petType":   "Pet type",
	"dates":     "Dates",
	"message":   "Message",
	"token":     "Security token",
}

// newValidator returns a validator that reports JSON field names and knows
// the phone rule.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", ValidPhone)
	return v
}

// ValidPhone accepts 7 to 20 phone characters with at least 7 digits.
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if !phoneRegex.MatchString(val) {
		return false
	}
	digits := 0
	for _, r := range val {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

// validateSubmission returns a client error for the first failing field in
// declaration order, or nil.
func validateSubmission(v *validator.Validate, s Submission) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Server(fmt.Errorf("validate submission: %w", err))
	}
	fe := verrs[0]
	return apperr.Client(fe.Field(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "email":
		return "Please enter a valid email address."
	case "phone":
		return "Please enter a valid phone number."
	default:
		return label + " is invalid."
	}
}

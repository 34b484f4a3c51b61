package quiz

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// answerlist: comma separated 1-indexed positions, e.g. "2" or "1,3".
	_ = v.RegisterValidation("answerlist", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return false
		}
		for _, tok := range strings.Split(s, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil || n < 1 || n > MaxOptions {
				return false
			}
		}
		return true
	})
	return v
}

// ValidateSettings checks attempts and points are positive.
func ValidateSettings(s Settings) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

type fieldError struct{ field, msg string }

func validateRow(r Row) []fieldError {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{field: "Row", msg: err.Error()}}
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is empty"
		case "answerlist":
			msg = fmt.Sprintf("%q is not a 1-indexed option number", fe.Value())
		case "oneof":
			msg = fmt.Sprintf("%q is not one of %s", fe.Value(), fe.Param())
		default:
			msg = fmt.Sprintf("fails %s", fe.Tag())
		}
		out = append(out, fieldError{field: fe.Field(), msg: msg})
	}
	return out
}

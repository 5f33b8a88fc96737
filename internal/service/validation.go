package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
	"github.com/unclebandit/togetherunite-backend/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct turns validator failures into a single ValidationError.
// Missing fields are reported together; an oversized recipient list gets
// its own message.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.NewValidation("invalid request: %v", err)
	}

	var missing, problems []string
	for _, fe := range verrs {
		switch {
		case fe.Tag() == "required":
			missing = append(missing, fieldPath(fe))
		case fe.Field() == "recipient_list" && fe.Tag() == "max":
			return appErrors.NewValidation("Recipient list cannot exceed %d emails", model.MaxRecipients)
		default:
			problems = append(problems, describe(fe))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return appErrors.NewValidation("Missing required fields: %s", strings.Join(missing, ", "))
	}
	return appErrors.NewValidation("%s", strings.Join(problems, "; "))
}

// fieldPath drops the struct name from the namespace, leaving e.g.
// "recipient_list[3].email".
func fieldPath(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}

func describe(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

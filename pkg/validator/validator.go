package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"anoa.com/welfaredesk/internal/entity"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const specialChars = "@$!%*?&"

var registerOnce sync.Once

// RegisterWithGin installs the custom tags on gin's binding validator. Safe to
// call more than once.
func RegisterWithGin() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding validator is not go-playground/validator")
			return
		}
		err = Register(v)
	})
	return err
}

// Register adds the domain tags and reports field names the way clients
// send them (form or json tag).
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	validations := map[string]validator.Func{
		"password": func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		},
		"role": func(fl validator.FieldLevel) bool {
			_, ok := entity.ParseRole(fl.Field().String())
			return ok
		},
		"department": func(fl validator.FieldLevel) bool {
			_, ok := entity.ParseDepartment(fl.Field().String())
			return ok
		},
		// an empty value clears an optional department on edit
		"department_or_none": func(fl validator.FieldLevel) bool {
			value := strings.TrimSpace(fl.Field().String())
			if value == "" {
				return true
			}
			_, ok := entity.ParseDepartment(value)
			return ok
		},
		"purpose_status": func(fl validator.FieldLevel) bool {
			_, ok := entity.ParsePurposeStatus(fl.Field().String())
			return ok
		},
		"token_status": func(fl validator.FieldLevel) bool {
			_, ok := entity.ParseTokenStatus(fl.Field().String())
			return ok
		},
		"objectid": func(fl validator.FieldLevel) bool {
			return entity.IsID(fl.Field().String())
		},
	}

	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// IsStrongPassword requires 8 to 20 characters drawn from letters, digits and
// @$!%*?&, with at least one lowercase, uppercase, digit and special char.
func IsStrongPassword(s string) bool {
	if len(s) < 8 || len(s) > 20 {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// FormatValidationError returns the message of the first failing field.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return getFieldErrorMessage(validationErrors[0])
	}
	return "Invalid request payload."
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Field() {
	case "cnic":
		if fe.Tag() != "required" {
			return "CNIC must be exactly 13 digits."
		}
	case "number":
		if fe.Tag() != "required" {
			return "Phone number must be exactly 11 digits."
		}
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return "Please provide a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s.", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long.", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits.", field)
	case "password":
		return "Password must contain one uppercase letter, one lowercase letter, one number, and one special character."
	case "role":
		return "Role must be one of admin, receptionist or staff."
	case "department", "department_or_none":
		return "Department must be one of health, education, food-assistance, general-support or employment."
	case "purpose_status":
		return "Purpose status must be one of pending, approved, rejected, in-progress or completed."
	case "token_status":
		return "Status must be one of new, in-progress or completed."
	case "objectid":
		return fmt.Sprintf("%s must be a valid id.", field)
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"name":          "Name",
		"email":         "Email",
		"password":      "Password",
		"role":          "Role",
		"department":    "Department",
		"cnic":          "CNIC",
		"number":        "Phone number",
		"address":       "Address",
		"purpose":       "Purpose",
		"purposeStatus": "Purpose status",
		"visit":         "Visit",
		"beneficiary":   "Beneficiary",
		"status":        "Status",
		"actionTaken":   "Action taken",
		"remarks":       "Remarks",
		"token":         "Token",
		"addedBy":       "Added by",
		"id":            "ID",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

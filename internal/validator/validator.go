// internal/validator/validator.go
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"finance-tracker/internal/domain"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var nonBlank = regexp.MustCompile(`\S`)

func init() {
	Validate = validator.New()

	// "2024-12"
	_ = Validate.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 7 {
			return false
		}
		_, err := time.Parse(domain.MonthLayout, s)
		return err == nil
	})

	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})

	_ = Validate.RegisterValidation("categorygroup", func(fl validator.FieldLevel) bool {
		return domain.Group(fl.Field().String()).Valid()
	})

	_ = Validate.RegisterValidation("assettype", func(fl validator.FieldLevel) bool {
		return domain.AssetType(fl.Field().String()).Valid()
	})

	_ = Validate.RegisterValidation("txkind", func(fl validator.FieldLevel) bool {
		return domain.Kind(fl.Field().String()).Valid()
	})
}

// Struct validates v and flattens the failures into field -> message pairs.
func Struct(v any) map[string]string {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[lowerFirst(e.Field())] = FieldErrorToString(e)
	}
	return out
}

func FieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "yearmonth":
		return fmt.Sprintf("%s must be in YYYY-MM format", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "categorygroup":
		return fmt.Sprintf("%s must be one of %v", e.Field(), domain.Groups)
	case "assettype":
		return fmt.Sprintf("%s must be one of %v", e.Field(), domain.AssetTypes)
	case "txkind":
		return fmt.Sprintf("%s must be INCOME or EXPENSE", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

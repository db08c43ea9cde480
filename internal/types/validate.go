package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every request type; validator caches struct metadata per instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "outputkind", func(fl validator.FieldLevel) bool {
		_, err := ParseOutputKind(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "language", func(fl validator.FieldLevel) bool {
		return Language(fl.Field().String()).IsValid()
	})
	mustRegister(v, "tone", func(fl validator.FieldLevel) bool {
		return Tone(fl.Field().String()).IsValid()
	})
	mustRegister(v, "analysiskind", func(fl validator.FieldLevel) bool {
		return AnalysisKind(fl.Field().String()).IsValid()
	})
	mustRegister(v, "rewritekind", func(fl validator.FieldLevel) bool {
		return RewriteKind(fl.Field().String()).IsValid()
	})
	mustRegister(v, "fontfamily", func(fl validator.FieldLevel) bool {
		return FontFamily(fl.Field().String()).IsValid()
	})
	mustRegister(v, "fontsize", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Int {
			return false
		}
		return FontSize(fl.Field().Int()).IsValid()
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("failed to register validation " + tag + ": " + err.Error())
	}
}

// ValidateCustomization checks font settings of a bundle. Empty values are allowed and mean "default".
func ValidateCustomization(b CustomizationBundle) error {
	return validate.Struct(customizationCheck{FontFamily: b.FontFamily, FontSize: b.FontSize})
}

type customizationCheck struct {
	FontFamily FontFamily `validate:"omitempty,fontfamily"`
	FontSize   FontSize   `validate:"omitempty,fontsize"`
}

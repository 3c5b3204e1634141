package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/strcase"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match the JSON bodies.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError)
		for _, fe := range validateErrs {
			errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

type rule struct {
	tag   string
	msg   string
	check validator.Func
}

var rules = []rule{
	{
		tag: "instant",
		msg: "{0} must be a timestamp like 2006-01-02T15:04:05.000000000Z",
		check: func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(string)
			if !ok {
				return false
			}
			_, err := instant.Parse(s)
			return err == nil
		},
	},
	{
		tag: "iana_zone",
		msg: "{0} must be an IANA time zone name",
		check: func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(string)
			if !ok || s == "" {
				return false
			}
			_, err := time.LoadLocation(s)
			return err == nil
		},
	},
}

func registerCustom(validate *validator.Validate, enTrans ut.Translator) error {
	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.check); err != nil {
			return err
		}

		err := validate.RegisterTranslation(r.tag, enTrans,
			func(trans ut.Translator) error {
				return trans.Add(r.tag, r.msg, false)
			},
			func(trans ut.Translator, fe validator.FieldError) string {
				t, err := trans.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("validator: error translating", "tag", fe.Tag(), "error", err)
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// Package validation register custom form rules on gin's validator and translate
// validation errors into per-field messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"CareerFindr-backend/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Length bound of motivation field in application form
const (
	MotivationMinLen = 100
	MotivationMaxLen = 5000
)

var (
	motivationTag  = "motivation"
	motivationText = "{0} must be between 100 and 5000 characters"

	appTypeTag  = "apptype"
	appTypeText = "{0} must be either course or job"

	phoneTag   = "phone"
	phoneText  = "{0} must be a valid phone number"
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	requiredTag  = "required"
	requiredText = "{0} is required"

	translator ut.Translator
	once       sync.Once
)

// Register install custom validators on gin's default validator engine.
// It is safe to call more than once.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		Init(v)
	})
}

// Init install translations and custom validators on given validator
func Init(v *validator.Validate) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(motivationTag, motivationValidation)
	registerTranslation(v, motivationTag, motivationText)

	_ = v.RegisterValidation(appTypeTag, appTypeValidation)
	registerTranslation(v, appTypeTag, appTypeText)

	_ = v.RegisterValidation(phoneTag, phoneValidation)
	registerTranslation(v, phoneTag, phoneText)

	registerTranslation(v, requiredTag, requiredText, true)
}

func registerTranslation(v *validator.Validate, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FormatErrors map validation error of each field to readable message.
// It return nil when err isn't validator.ValidationErrors.
func FormatErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if translator != nil {
			out[fe.Field()] = fe.Translate(translator)
		} else {
			out[fe.Field()] = fe.Error()
		}
	}
	return out
}

// ValidMotivation report whether motivation text has acceptable length after trimming
func ValidMotivation(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= MotivationMinLen && n <= MotivationMaxLen
}

func motivationValidation(fl validator.FieldLevel) bool {
	return ValidMotivation(fl.Field().String())
}

func appTypeValidation(fl validator.FieldLevel) bool {
	return model.ValidApplicationType(fl.Field().String())
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
}

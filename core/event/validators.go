package event

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	eventKindTag  = "eventkind"
	eventKindText = "invalid event kind"
)

// InitValidators registers the event package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(eventKindTag, eventKindValidation)
	core.RegisterCustomTranslation(validate, translator, eventKindTag, eventKindText)
}

func eventKindValidation(fl validator.FieldLevel) bool {
	kind := fl.Field().String()
	for _, k := range AllKinds {
		if kind == k {
			return true
		}
	}
	return false
}

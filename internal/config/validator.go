package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// bungieLanguages are the locale codes served by the Destiny 2 manifest.
var bungieLanguages = []string{
	"de", "en", "es", "es-mx", "fr", "it", "ja", "ko", "pl", "pt-br", "ru", "zh-chs", "zh-cht",
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("bungie_language", isBungieLanguage); err != nil {
		return nil, nil, fmt.Errorf("failed to register bungie_language validation: %w", err)
	}
	if err := validate.RegisterTranslation("bungie_language", trans, func(ut ut.Translator) error {
		return ut.Add("bungie_language", "{0} must be one of "+strings.Join(bungieLanguages, " "), true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("bungie_language", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register bungie_language translation: %w", err)
	}

	// The API key only ever comes from the environment, so point there
	if err := validate.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		if err := ut.Add("required", "{0} is a required field", true); err != nil {
			return err
		}
		return ut.Add("required_api_key", "{0} is a required field. Please set the BUNGIE_API_KEY environment variable", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if field == "bungie.api_key" {
			t, _ := ut.T("required_api_key", field)
			return t
		}
		t, _ := ut.T("required", field)
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register required translation: %w", err)
	}

	return validate, trans, nil
}

func isBungieLanguage(fl validator.FieldLevel) bool {
	return slices.Contains(bungieLanguages, fl.Field().String())
}

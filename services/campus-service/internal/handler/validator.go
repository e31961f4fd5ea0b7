package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"google.golang.org/grpc/codes"

	"github.com/campusconnect/campus-qa-api/shared/utilities"
)

// requestValidator decodes and validates JSON request bodies, rendering
// validation failures with human-readable field messages.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() *requestValidator {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = entranslations.RegisterDefaultTranslations(validate, translator)

	return &requestValidator{
		validate:   validate,
		translator: translator,
	}
}

// decodeAndValidate parses the request body into dst and validates it. On
// failure it writes the error response itself and returns false.
func (v *requestValidator) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utilities.WriteError(w, codes.InvalidArgument, "invalid request body")
		return false
	}

	if err := v.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fieldErr.Translate(v.translator))
			}
			utilities.WriteError(w, codes.InvalidArgument, strings.Join(messages, "; "))
			return false
		}

		utilities.WriteError(w, codes.InvalidArgument, "invalid request body")
		return false
	}

	return true
}

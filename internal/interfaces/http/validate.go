package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate instancia compartida; validator cachea los metadatos por struct.
var validate = validator.New()

// validationMessage arma un mensaje legible a partir de los campos que fallaron.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return "datos inválidos"
	}
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field()+":"+fe.Tag())
	}
	return "campos inválidos: " + strings.Join(fields, ", ")
}

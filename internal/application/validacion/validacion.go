// Package validacion valida la forma de los DTOs con go-playground/validator y traduce
// el primer error a *domain.ValidationError usando los nombres JSON de los campos.
package validacion

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/ordenes-api/internal/domain"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instancia() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
			}
			return name
		})
	})
	return v
}

// Struct valida s. Devuelve nil o un *domain.ValidationError del primer campo inválido.
func Struct(s any) error {
	err := instancia().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return domain.NewValidationError(campo(ves[0]), motivo(ves[0]))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

// campo quita el nombre del struct raíz: "MaterializarRequest.cotizaciones[0]" → "cotizaciones[0]".
func campo(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func motivo(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "max":
		if fe.Kind() == reflect.String {
			return "debe tener como máximo " + fe.Param() + " caracteres"
		}
		return "debe ser como máximo " + fe.Param()
	case "min":
		return "debe ser como mínimo " + fe.Param()
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "url":
		return "debe ser una URL válida"
	case "email":
		return "debe ser un email válido"
	default:
		return "no es válido"
	}
}

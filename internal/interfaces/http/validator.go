package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// requestValidator aplica los tags validate de los DTOs; una sola instancia (cachea los structs).
var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// bindBody parsea el JSON del body y lo valida. Devuelve errores de dominio (400).
func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("cuerpo inválido: %v", err)
	}
	return validateStruct(out)
}

// bindQuery parsea la query string y la valida.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return domain.Invalid("parámetros inválidos: %v", err)
	}
	return validateStruct(out)
}

func validateStruct(v any) error {
	err := requestValidator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Invalid("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return domain.Invalid("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_without":
		return field + " es requerido"
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de [%s]", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s excede el máximo (%s)", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s no alcanza el mínimo (%s)", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s debe ser distinto de %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s no cumple %s", field, fe.Tag())
	}
}

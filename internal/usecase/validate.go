package usecase

import (
	"github.com/go-playground/validator/v10"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

// validate checks values that reach the usecases without going through HTTP
// binding, such as kipusctl input.
var validate = validator.New(validator.WithRequiredStructEnabled())

// checkEmail expects an already normalized address.
func checkEmail(field, email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.Invalid(field, "must be a valid email address")
	}
	return nil
}

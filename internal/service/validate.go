package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Forms carry gin "binding" tags; the same rules are enforced here for
// callers that do not come through HTTP.
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

func validateForm(form interface{}) error {
	if err := validate.Struct(form); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

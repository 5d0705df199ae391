package forms

import (
	"fmt"
	"net/url"
	"strings"
)

type LoginForm struct {
	Username string `schema:"username" validate:"required,max=150"`
	Password string `schema:"password" validate:"required"`
}

func DecodeLogin(values url.Values) (LoginForm, error) {
	var f LoginForm
	if err := decoder.Decode(&f, values); err != nil {
		return LoginForm{}, fmt.Errorf("decode login form: %w", err)
	}
	f.Username = strings.TrimSpace(f.Username)
	return f, nil
}

func (f LoginForm) Validate() Errors {
	errs := fieldErrors(validate.Struct(f))
	if len(errs) == 0 {
		return nil
	}
	return errs
}

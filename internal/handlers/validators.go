package handlers

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterValidators installs the ledger's binding tags on gin's validator engine.
// It is safe to call more than once.
func RegisterValidators() error {
	var err error
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(fieldName)
		err = v.RegisterValidation("ledger_category", validateCategory)
	})
	return err
}

// fieldName reports json or form names in validation errors instead of Go field names.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// validateCategory accepts any casing of the fixed category set.
func validateCategory(fl validator.FieldLevel) bool {
	_, ok := domain.ParseAccountCategory(fl.Field().String())
	return ok
}

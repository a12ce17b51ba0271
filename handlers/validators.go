package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RGBColorValidator accepts textual rgb triples like "rgb(33,150,243)".
var RGBColorValidator = func(fl validator.FieldLevel) bool {
	pattern := `^rgb\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*\)$`
	matched, _ := regexp.MatchString(pattern, fl.Field().String())
	return matched
}

// The rgbcolor rule must exist before the first request binds a
// GeneratePassRequest, so it is registered with gin's validator engine here.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("rgbcolor", RGBColorValidator)
	}
}

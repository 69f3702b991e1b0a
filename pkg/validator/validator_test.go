package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	SKU  string   `validate:"required,notblank,max=10"`
	URL  string   `validate:"omitempty,http_url"`
	Tags []string `validate:"omitempty,min=1,dive,required"`
}

func TestValidateStruct(t *testing.T) {
	assert.Empty(t, ValidateStruct(&sample{SKU: "A-1", URL: "https://example.com/hook"}))

	errs := ValidateStruct(&sample{SKU: "   "})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "sample.SKU", errs[0].FailedField)
		assert.Equal(t, "notblank", errs[0].Tag)
	}
	assert.Equal(t, "Validation failed: Field 'sample.SKU' failed on tag 'notblank'", Message(errs))

	errs = ValidateStruct(&sample{SKU: "A", URL: "ftp://example.com"})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "http_url", errs[0].Tag)
	}

	errs = ValidateStruct(&sample{SKU: "A", Tags: []string{"ok", ""}})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "required", errs[0].Tag)
	}
}

func TestMessageEmpty(t *testing.T) {
	assert.Equal(t, "", Message(nil))
}

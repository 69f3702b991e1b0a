package importer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"catalog-api/internal/model"

	"github.com/shopspring/decimal"
)

// SkipReason classifies a rejected row.
type SkipReason string

const (
	ReasonMissingSKU    SkipReason = "missing_sku"
	ReasonInvalidPrice  SkipReason = "invalid_price"
	ReasonInvalidActive SkipReason = "invalid_active"
	ReasonTooLong       SkipReason = "value_too_long"
	ReasonBadEncoding   SkipReason = "invalid_encoding"
)

// textFields are stored as varchar and must be valid UTF-8 without NUL.
var textFields = []string{"sku", "name", "description"}

// RowError rejects a single row. The import skips the row and continues.
type RowError struct {
	Line   int
	Reason SkipReason
	Detail string
}

func (e *RowError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Reason, e.Detail)
}

// Info converts the error into its job snapshot form.
func (e *RowError) Info() model.RowErrorInfo {
	return model.RowErrorInfo{Line: e.Line, Reason: string(e.Reason), Detail: e.Detail}
}

// ParseRow validates one record and normalizes it into a ProductDraft. Any
// rejection is returned as a *RowError.
func ParseRow(row RawRow) (model.ProductDraft, error) {
	for _, field := range textFields {
		v, _ := row.Get(field)
		if err := checkText(row.Line, field, v); err != nil {
			return model.ProductDraft{}, err
		}
	}

	rawSKU, _ := row.Get("sku")
	sku, skuLower := model.NormalizeSKU(rawSKU)
	if sku == "" {
		return model.ProductDraft{}, &RowError{Line: row.Line, Reason: ReasonMissingSKU}
	}

	if err := checkLen(row.Line, "sku", sku, model.MaxSKULen); err != nil {
		return model.ProductDraft{}, err
	}

	draft := model.ProductDraft{
		SKU:      sku,
		SKULower: skuLower,
		Active:   true,
	}
	if v, ok := row.Get("name"); ok {
		draft.Name = strings.TrimSpace(v)
	}
	if v, ok := row.Get("description"); ok {
		draft.Description = strings.TrimSpace(v)
	}
	if err := checkLen(row.Line, "name", draft.Name, model.MaxNameLen); err != nil {
		return model.ProductDraft{}, err
	}
	if err := checkLen(row.Line, "description", draft.Description, model.MaxDescriptionLen); err != nil {
		return model.ProductDraft{}, err
	}

	if v, _ := row.Get("price"); strings.TrimSpace(v) != "" {
		price, err := parsePrice(v)
		if err != nil {
			return model.ProductDraft{}, &RowError{Line: row.Line, Reason: ReasonInvalidPrice, Detail: err.Error()}
		}
		draft.Price = decimal.NewNullDecimal(price)
	}

	if v, _ := row.Get("active"); strings.TrimSpace(v) != "" {
		active, err := parseActive(v)
		if err != nil {
			return model.ProductDraft{}, &RowError{Line: row.Line, Reason: ReasonInvalidActive, Detail: err.Error()}
		}
		draft.Active = active
	}

	return draft, nil
}

func parsePrice(v string) (decimal.Decimal, error) {
	v = strings.TrimSpace(v)
	price, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%q is not a number", v)
	}
	if price.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%q is negative", v)
	}
	price = price.Round(2)
	if price.GreaterThan(model.MaxPrice) {
		return decimal.Decimal{}, fmt.Errorf("%q exceeds %s", v, model.MaxPrice)
	}
	return price, nil
}

func checkText(line int, field, v string) error {
	if !utf8.ValidString(v) {
		return &RowError{Line: line, Reason: ReasonBadEncoding, Detail: field + " is not valid UTF-8"}
	}
	if strings.IndexByte(v, 0) >= 0 {
		return &RowError{Line: line, Reason: ReasonBadEncoding, Detail: field + " contains a NUL byte"}
	}
	return nil
}

// checkLen counts characters, matching varchar(n) semantics.
func checkLen(line int, field, v string, max int) error {
	if n := utf8.RuneCountInString(v); n > max {
		return &RowError{Line: line, Reason: ReasonTooLong, Detail: fmt.Sprintf("%s has %d characters, max %d", field, n, max)}
	}
	return nil
}

func parseActive(v string) (bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean", v)
	}
	return b, nil
}

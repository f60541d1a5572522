// Package codec maps an attribute's declared data type to the rules used to
// validate, parse and render its raw text values. It performs no I/O.
package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/GTDGit/catalog_api/internal/models"
)

// DateLayout is the accepted form of date values (ISO calendar date).
const DateLayout = "2006-01-02"

// Canonical boolean values.
const (
	BoolTrue  = "1"
	BoolFalse = "0"
)

// InputHint tells a form builder which control renders a data type.
type InputHint string

const (
	InputText          InputHint = "text"
	InputTextarea      InputHint = "textarea"
	InputNumber        InputHint = "number"
	InputSelectBoolean InputHint = "select-boolean"
	InputDate          InputHint = "date"
	InputSelect        InputHint = "select"
)

// Rule is the value handling of one data type. Parse receives a non-empty raw
// value and the attribute's options.
type Rule struct {
	Type  models.DataType
	Hint  InputHint
	Parse func(raw string, options []string) (any, error)
}

var rules = map[models.DataType]Rule{
	models.DataTypeString:  {Type: models.DataTypeString, Hint: InputText, Parse: parseText},
	models.DataTypeText:    {Type: models.DataTypeText, Hint: InputTextarea, Parse: parseText},
	models.DataTypeNumber:  {Type: models.DataTypeNumber, Hint: InputNumber, Parse: parseNumber},
	models.DataTypeBoolean: {Type: models.DataTypeBoolean, Hint: InputSelectBoolean, Parse: parseBoolean},
	models.DataTypeDate:    {Type: models.DataTypeDate, Hint: InputDate, Parse: parseDate},
	models.DataTypeEnum:    {Type: models.DataTypeEnum, Hint: InputSelect, Parse: parseEnum},
}

// For returns the rule registered for dt.
func For(dt models.DataType) (Rule, error) {
	r, ok := rules[dt]
	if !ok {
		return Rule{}, fmt.Errorf("unsupported data type %q", dt)
	}
	return r, nil
}

// Hint returns the input hint of dt, falling back to a plain text input for
// unknown types.
func Hint(dt models.DataType) InputHint {
	if r, ok := rules[dt]; ok {
		return r.Hint
	}
	return InputText
}

// Parse converts raw into the Go value of dt: string, float64, bool or
// time.Time. An empty raw value is unset and parses to nil.
func Parse(dt models.DataType, raw string, options []string) (any, error) {
	r, err := For(dt)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	return r.Parse(raw, options)
}

// Validate checks raw against def's data type and options. Empty values are
// accepted here; required-ness is the caller's concern.
func Validate(def models.AttributeDefinition, raw string) error {
	_, err := Parse(def.DataType, raw, def.Options)
	return err
}

func parseText(raw string, _ []string) (any, error) {
	return raw, nil
}

func parseNumber(raw string, _ []string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return f, nil
}

func parseBoolean(raw string, _ []string) (any, error) {
	switch raw {
	case BoolTrue:
		return true, nil
	case BoolFalse:
		return false, nil
	}
	return nil, fmt.Errorf("%q is not a boolean, expected %q or %q", raw, BoolTrue, BoolFalse)
}

func parseDate(raw string, _ []string) (any, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a date in YYYY-MM-DD form", raw)
	}
	return t, nil
}

func parseEnum(raw string, options []string) (any, error) {
	for _, o := range options {
		if o == raw {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%q is not one of %s", raw, strings.Join(options, ", "))
}

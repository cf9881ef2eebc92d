package resource

import (
	"fmt"
	"strconv"
	"strings"

	"energy-admin/internal/gateway"
	"energy-admin/internal/names"
)

// Normalize applies the as-you-type transformation for a field: name fields are
// uppercased, everything else is returned unchanged.
func (d *Descriptor) Normalize(field, value string) string {
	if f, ok := d.Field(field); ok && f.Kind == KindName {
		return names.Normalize(value)
	}
	return value
}

// CheckField validates a single raw value; it returns nil when the value is
// acceptable. Used for live feedback as well as by Validate.
func (d *Descriptor) CheckField(field, raw string) *gateway.FieldError {
	f, ok := d.Field(field)
	if !ok {
		return &gateway.FieldError{Code: gateway.CodeInvalid, Field: field, Message: "unknown field"}
	}
	_, fe := d.coerce(f, raw)
	return fe
}

// Validate normalizes a submitted form and returns typed fields ready for the
// gateway, or the list of rejected fields. Only fields known to the descriptor
// are carried over.
func (d *Descriptor) Validate(form map[string]string) (gateway.Fields, []gateway.FieldError) {
	out := make(gateway.Fields, len(d.Fields))
	var errs []gateway.FieldError
	for _, f := range d.Fields {
		v, fe := d.coerce(f, form[f.Name])
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		if v != nil {
			out[f.Name] = v
		}
	}
	return out, errs
}

// ValidateInput is Validate for decoded JSON bodies: unknown keys are rejected
// and scalar values are stringified first.
func (d *Descriptor) ValidateInput(in map[string]any) (gateway.Fields, []gateway.FieldError) {
	form := make(map[string]string, len(in))
	var errs []gateway.FieldError
	for k, v := range in {
		if _, ok := d.Field(k); !ok {
			errs = append(errs, gateway.FieldError{Code: gateway.CodeInvalid, Field: k, Message: "unknown field"})
			continue
		}
		switch t := v.(type) {
		case nil:
		case string:
			form[k] = t
		case float64:
			form[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			form[k] = fmt.Sprintf("%v", t)
		}
	}
	fields, verrs := d.Validate(form)
	return fields, append(errs, verrs...)
}

func (d *Descriptor) coerce(f Field, raw string) (any, *gateway.FieldError) {
	switch f.Kind {
	case KindName:
		name := names.Canonical(raw)
		if name == "" {
			return nil, &gateway.FieldError{Code: gateway.CodeRequired, Field: f.Name, Message: f.Label + " is required"}
		}
		if !d.NameRule.Match(name) {
			return nil, &gateway.FieldError{Code: gateway.CodeInvalid, Field: f.Name, Message: f.Label + " may only contain " + d.NameRule.Label}
		}
		return name, nil

	case KindOrder:
		s := strings.TrimSpace(raw)
		if s == "" {
			if f.Required {
				return nil, &gateway.FieldError{Code: gateway.CodeRequired, Field: f.Name, Message: f.Label + " is required"}
			}
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &gateway.FieldError{Code: gateway.CodeInvalid, Field: f.Name, Message: f.Label + " must be a number"}
		}
		if n < OrderMin || n > OrderMax {
			return nil, &gateway.FieldError{Code: gateway.CodeOutOfRange, Field: f.Name,
				Message: fmt.Sprintf("%s must be between %d and %d", f.Label, OrderMin, OrderMax)}
		}
		return n, nil

	default:
		s := strings.TrimSpace(raw)
		if s == "" {
			if f.Required {
				msg := f.Label + " is required"
				if f.Kind == KindRef {
					msg = "select a " + strings.ToLower(f.Label)
				}
				return nil, &gateway.FieldError{Code: gateway.CodeRequired, Field: f.Name, Message: msg}
			}
			return nil, nil
		}
		return s, nil
	}
}

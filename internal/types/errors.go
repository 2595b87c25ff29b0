package types

import (
	"fmt"
	"strings"
)

// FieldError is one rejected configuration value, addressed by its JSON path
// such as "audio.sample_rate".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

func (f FieldError) String() string {
	if s, ok := f.Value.(string); ok && s == "" {
		return f.Field + " " + f.Message
	}
	return fmt.Sprintf("%s %s (got %v)", f.Field, f.Message, f.Value)
}

// ValidationError lists every rejected value of a configuration file.
// The zero value is empty and ready to use.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

// Add records a rejected value.
func (v *ValidationError) Add(field, message string, value any) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message, Value: value})
}

// Error lists the rejected values one per line below a summary.
func (v *ValidationError) Error() string {
	var b strings.Builder
	switch n := len(v.Fields); n {
	case 1:
		b.WriteString("invalid configuration value:")
	default:
		fmt.Fprintf(&b, "%d invalid configuration values:", n)
	}
	for _, f := range v.Fields {
		b.WriteString("\n  ")
		b.WriteString(f.String())
	}
	return b.String()
}

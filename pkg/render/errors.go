package render

import (
	"fmt"

	"github.com/cyberwani/metabox/pkg/schema"
)

// UnsupportedTypeError is returned when a field names a type with no
// registered rendering strategy. It indicates a configuration bug, not
// a runtime condition to recover from.
type UnsupportedTypeError struct {
	FieldID string
	Type    schema.FieldType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("render: no strategy registered for field %q (type %q)", e.FieldID, e.Type)
}

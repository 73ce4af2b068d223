package gatesdk

import "encoding/json"

// Optional is a tri-state JSON field for PATCH requests: absent from the
// payload (leave unchanged), explicit null (clear), or a value (overwrite).
// Declare fields with the `omitzero` tag so unset values stay off the wire.
type Optional[T any] struct {
	set   bool
	value *T
}

// Some returns an Optional carrying a value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: &v}
}

// Null returns an Optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true}
}

// IsSet reports whether the field appeared in the payload at all.
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field was an explicit null.
func (o Optional[T]) IsNull() bool { return o.set && o.value == nil }

// Value returns the carried value, or nil for unset/null fields.
func (o Optional[T]) Value() *T { return o.value }

// IsZero makes `omitzero` skip unset fields during marshaling.
func (o Optional[T]) IsZero() bool { return !o.set }

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.value)
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.value = &v
	return nil
}

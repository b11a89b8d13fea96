package util

import (
	"database/sql/driver"
	"encoding/json"
)

// Optional distinguishes "absent" from a zero value in patch params and
// filter structs.
type Optional[T any] struct {
	Val   T
	IsSet bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Val: v, IsSet: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a possibly-nil pointer into an Optional.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Ptr returns nil for None, otherwise a pointer to the value.
func (o Optional[T]) Ptr() *T {
	if !o.IsSet {
		return nil
	}
	v := o.Val
	return &v
}

func (o Optional[T]) UnwrapOr(defaultVal T) T {
	if !o.IsSet {
		return defaultVal
	}
	return o.Val
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.IsSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.Val)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Scan implements sql.Scanner so optional columns map to None on NULL.
func (o *Optional[T]) Scan(value any) error {
	if value == nil {
		*o = None[T]()
		return nil
	}

	var v T
	if scanner, ok := any(&v).(interface{ Scan(any) error }); ok {
		if err := scanner.Scan(value); err != nil {
			return err
		}
	} else {
		v = value.(T)
	}

	*o = Some(v)
	return nil
}

// Value implements driver.Valuer, writing NULL for None.
func (o Optional[T]) Value() (driver.Value, error) {
	if !o.IsSet {
		return nil, nil
	}
	if valuer, ok := any(o.Val).(driver.Valuer); ok {
		return valuer.Value()
	}
	return o.Val, nil
}

package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OptionalState is the state of a three-valued optional field in a patch.
type OptionalState int

const (
	// OptionalUnset leaves the stored value unchanged.
	OptionalUnset OptionalState = iota
	// OptionalClear stores an explicit null.
	OptionalClear
	// OptionalSet stores Value.
	OptionalSet
)

// OptionalString is a patch field that distinguishes "leave unchanged",
// "clear" and "set to value". The zero value is unset.
type OptionalString struct {
	State OptionalState
	Value string
}

// SetString returns an OptionalString holding v. A blank v clears the field.
func SetString(v string) OptionalString {
	v = strings.TrimSpace(v)
	if v == "" {
		return ClearString()
	}
	return OptionalString{State: OptionalSet, Value: v}
}

// ClearString returns an OptionalString that clears the field.
func ClearString() OptionalString {
	return OptionalString{State: OptionalClear}
}

func (o OptionalString) IsUnset() bool { return o.State == OptionalUnset }

// Pointer returns the value to store: nil for clear, &Value for set.
// It must not be called on an unset field.
func (o OptionalString) Pointer() *string {
	if o.State != OptionalSet {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON is only invoked when the key is present, so an absent key
// stays unset. null and "" clear the field.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = ClearString()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = SetString(s)
	return nil
}

// MarshalJSON writes null for unset and clear.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.State != OptionalSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// NormalizeOptional trims s and maps blank to nil.
func NormalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

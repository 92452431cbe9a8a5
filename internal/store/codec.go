package store

import (
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Encode serializes a document body.
func Encode(v any) ([]byte, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	return data, nil
}

// Decode deserializes a document body into v.
func Decode(data []byte, v any) error {
	if err := codec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	return nil
}

// Fields is a document body decoded one level deep: top-level keys with
// their values still encoded. Rewriting one field through Fields leaves every
// other field untouched.
type Fields map[string]json.RawMessage

// DecodeFields splits a document body into its top-level fields.
// The body must be a JSON object.
func DecodeFields(data []byte) (Fields, error) {
	fields := Fields{}
	if len(data) == 0 {
		return fields, nil
	}
	if err := codec.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object: %v", ErrInvalidEntity, err)
	}
	if fields == nil {
		fields = Fields{}
	}
	return fields, nil
}

// Set encodes v into the named field.
func (f Fields) Set(name string, v any) error {
	raw, err := Encode(v)
	if err != nil {
		return err
	}
	f[name] = raw
	return nil
}

// String returns the named field if it is a JSON string.
func (f Fields) String(name string) (string, bool) {
	raw, ok := f[name]
	if !ok {
		return "", false
	}
	var s string
	if err := codec.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Encode serializes the fields back into a document body.
func (f Fields) Encode() ([]byte, error) {
	return Encode(map[string]json.RawMessage(f))
}

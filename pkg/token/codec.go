// Package token implements the auth token codec.
package token

import (
	"encoding/base64"
	"unicode/utf8"
)

// Encode returns the standard base64 encoding of text's UTF-8 bytes.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// EncodeOptional is Encode for values that may be absent.
// A nil text yields nil.
func EncodeOptional(text *string) *string {
	if text == nil {
		return nil
	}
	encoded := Encode(*text)
	return &encoded
}

// DecodeText reverses Encode.
//
// It returns a *DecodeError when encoded is not valid standard base64
// or when the decoded bytes are not valid UTF-8.
func DecodeText(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", &DecodeError{Reason: ReasonInvalidEncoding, Err: err}
	}
	if !utf8.Valid(raw) {
		return "", &DecodeError{Reason: ReasonInvalidUTF8}
	}
	return string(raw), nil
}

// Decode reverses Encode and splits the result into fields.
func Decode(encoded string) (Fields, error) {
	plain, err := DecodeText(encoded)
	if err != nil {
		return nil, err
	}
	return ParseFields(plain), nil
}

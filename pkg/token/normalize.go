// Package token implements the auth token codec.
package token

// Form is the detected representation of a raw token.
type Form string

const (
	FormPlain   Form = "plain"
	FormEncoded Form = "encoded"
)

// DecodeResult is the outcome of a validating decode.
type DecodeResult struct {
	OK     bool
	Plain  string
	Fields Fields
	Err    error
}

// TryDecode attempts to read raw as an encoded token.
// Failure is reported through the result, never as a panic.
func TryDecode(raw string) DecodeResult {
	plain, err := DecodeText(raw)
	if err != nil {
		return DecodeResult{Err: err}
	}
	return DecodeResult{
		OK:     true,
		Plain:  plain,
		Fields: ParseFields(plain),
	}
}

// Classify reports which form raw is taken to be.
func Classify(raw string) Form {
	if TryDecode(raw).OK {
		return FormEncoded
	}
	return FormPlain
}

// Normalized holds both representations of a token and its fields.
type Normalized struct {
	Form         Form   `json:"form"`
	PlainToken   string `json:"plain_token"`
	EncodedToken string `json:"encoded_token"`
	Fields       Fields `json:"fields"`
}

// Normalize accepts a token of unknown form and returns both forms.
//
// Any input that decodes as base64 into UTF-8 text is taken to be encoded,
// even if it was meant as plain text. Normalize never fails.
func Normalize(raw string) Normalized {
	if res := TryDecode(raw); res.OK {
		return Normalized{
			Form:         FormEncoded,
			PlainToken:   res.Plain,
			EncodedToken: raw,
			Fields:       res.Fields,
		}
	}
	return Normalized{
		Form:         FormPlain,
		PlainToken:   raw,
		EncodedToken: Encode(raw),
		Fields:       ParseFields(raw),
	}
}

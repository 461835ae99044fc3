package token

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantForm    Form
		wantPlain   string
		wantEncoded string
		wantFields  int
	}{
		{
			name:        "plain short token",
			raw:         "L1&DB1&O1",
			wantForm:    FormPlain,
			wantPlain:   "L1&DB1&O1",
			wantEncoded: "TDEmREIxJk8x",
			wantFields:  3,
		},
		{
			name:        "encoded short token",
			raw:         "TDEmREIxJk8x",
			wantForm:    FormEncoded,
			wantPlain:   "L1&DB1&O1",
			wantEncoded: "TDEmREIxJk8x",
			wantFields:  3,
		},
		{
			name:        "plain full token",
			raw:         "a&b&c&d&e",
			wantForm:    FormPlain,
			wantPlain:   "a&b&c&d&e",
			wantEncoded: "YSZiJmMmZCZl",
			wantFields:  5,
		},
		{
			name:        "ambiguous alphanumeric input is encoded",
			raw:         "YWJj",
			wantForm:    FormEncoded,
			wantPlain:   "abc",
			wantEncoded: "YWJj",
			wantFields:  3,
		},
		{
			name:        "valid base64 but not utf8 is plain",
			raw:         "//4=",
			wantForm:    FormPlain,
			wantPlain:   "//4=",
			wantEncoded: "Ly80PQ==",
			wantFields:  3,
		},
		{
			name:        "empty input decodes as empty encoded token",
			raw:         "",
			wantForm:    FormEncoded,
			wantPlain:   "",
			wantEncoded: "",
			wantFields:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got.Form != tt.wantForm {
				t.Errorf("Form = %q, want %q", got.Form, tt.wantForm)
			}
			if got.PlainToken != tt.wantPlain {
				t.Errorf("PlainToken = %q, want %q", got.PlainToken, tt.wantPlain)
			}
			if got.EncodedToken != tt.wantEncoded {
				t.Errorf("EncodedToken = %q, want %q", got.EncodedToken, tt.wantEncoded)
			}
			if got.Fields.Len() != tt.wantFields {
				t.Errorf("Fields.Len() = %d, want %d", got.Fields.Len(), tt.wantFields)
			}
		})
	}
}

func TestNormalize_AmbiguousFields(t *testing.T) {
	got := Normalize("YWJj")
	if got.Fields.Value(FieldLoginMasterID) != "abc" {
		t.Errorf("LoginMasterID = %q, want %q", got.Fields.Value(FieldLoginMasterID), "abc")
	}
}

func TestNormalize_FieldsMatchBothPaths(t *testing.T) {
	plain := "exp&L1&DB1&iss&O1"

	fromPlain := Normalize(plain)
	fromEncoded := Normalize(Encode(plain))

	if fromPlain.Form != FormPlain || fromEncoded.Form != FormEncoded {
		t.Fatalf("forms = %q/%q", fromPlain.Form, fromEncoded.Form)
	}
	if fromPlain.PlainToken != fromEncoded.PlainToken {
		t.Errorf("PlainToken differs: %q vs %q", fromPlain.PlainToken, fromEncoded.PlainToken)
	}
	if fromPlain.EncodedToken != fromEncoded.EncodedToken {
		t.Errorf("EncodedToken differs: %q vs %q", fromPlain.EncodedToken, fromEncoded.EncodedToken)
	}
	for i := range fromPlain.Fields {
		if fromPlain.Fields[i] != fromEncoded.Fields[i] {
			t.Errorf("field[%d] differs: %+v vs %+v", i, fromPlain.Fields[i], fromEncoded.Fields[i])
		}
	}
}

func TestTryDecode(t *testing.T) {
	res := TryDecode("TDEmREIxJk8x")
	if !res.OK || res.Err != nil {
		t.Fatalf("TryDecode() = %+v, want OK", res)
	}
	if res.Plain != "L1&DB1&O1" {
		t.Errorf("Plain = %q", res.Plain)
	}
	if res.Fields.Value(FieldOrgID) != "O1" {
		t.Errorf("Fields = %v", res.Fields)
	}

	res = TryDecode("L1&DB1&O1")
	if res.OK {
		t.Error("TryDecode(plain) should not be OK")
	}
	if res.Err == nil {
		t.Error("TryDecode(plain) should carry the decode error")
	}
	if res.Fields != nil {
		t.Errorf("TryDecode(plain) fields = %v, want nil", res.Fields)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Form
	}{
		{"TDEmREIxJk8x", FormEncoded},
		{"L1&DB1&O1", FormPlain},
		{"YWJj", FormEncoded},
		{"hello world", FormPlain},
	}
	for _, tt := range tests {
		if got := Classify(tt.raw); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func FuzzNormalize(f *testing.F) {
	f.Add("")
	f.Add("YWJj")
	f.Add("L1&DB1&O1")
	f.Add("TDEmREIxJk8x")
	f.Add("a&b&c&d&e")
	f.Add("//4=")
	f.Add("YQ")
	f.Add("\xff\xfe")

	f.Fuzz(func(t *testing.T, raw string) {
		n := Normalize(raw)

		switch n.Form {
		case FormPlain:
			if n.PlainToken != raw {
				t.Fatalf("plain form must keep the input: %q vs %q", n.PlainToken, raw)
			}
		case FormEncoded:
			if n.EncodedToken != raw {
				t.Fatalf("encoded form must keep the input: %q vs %q", n.EncodedToken, raw)
			}
		default:
			t.Fatalf("unknown form %q", n.Form)
		}

		if n.Form == FormEncoded {
			plain, err := DecodeText(n.EncodedToken)
			if err != nil {
				t.Fatalf("encoded token does not decode: %v", err)
			}
			if plain != n.PlainToken {
				t.Fatalf("DecodeText(encoded) = %q, want %q", plain, n.PlainToken)
			}
		}

		if n.Fields.Len() != 3 && n.Fields.Len() != 5 {
			t.Fatalf("unexpected field count %d", n.Fields.Len())
		}
	})
}

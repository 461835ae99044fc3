package token

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "microseconds",
			in:   time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC),
			want: "2024-01-02T03:04:05.123456+00:00",
		},
		{
			name: "nanoseconds truncated",
			in:   time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC),
			want: "2024-01-02T03:04:05.123456+00:00",
		},
		{
			name: "leading zero micros kept",
			in:   time.Date(2024, 1, 2, 3, 4, 5, 1000, time.UTC),
			want: "2024-01-02T03:04:05.000001+00:00",
		},
		{
			name: "whole second omits fraction",
			in:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			want: "2024-01-02T03:04:05+00:00",
		},
		{
			name: "sub-microsecond omits fraction",
			in:   time.Date(2024, 1, 2, 3, 4, 5, 999, time.UTC),
			want: "2024-01-02T03:04:05+00:00",
		},
		{
			name: "converted to utc",
			in:   time.Date(2024, 1, 2, 5, 4, 5, 0, time.FixedZone("CEST", 2*3600)),
			want: "2024-01-02T03:04:05+00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateAt(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC)

	g := GenerateAt(now, "L1", "DB1", "O1")

	wantPlain := "2024-01-03T03:04:05.123456+00:00&L1&DB1&2024-01-02T03:04:05.123456+00:00&O1"
	if g.PlainToken != wantPlain {
		t.Errorf("PlainToken = %q, want %q", g.PlainToken, wantPlain)
	}
	if g.EncodedToken != Encode(wantPlain) {
		t.Errorf("EncodedToken = %q, want Encode(plain)", g.EncodedToken)
	}
	if !g.Issued.Equal(now.Truncate(time.Microsecond)) {
		t.Errorf("Issued = %v", g.Issued)
	}
	if g.Expires.Sub(g.Issued) != ExpiryOffset {
		t.Errorf("Expires - Issued = %v, want %v", g.Expires.Sub(g.Issued), ExpiryOffset)
	}
}

func TestGenerateAuthToken_Shape(t *testing.T) {
	plain, encoded := GenerateAuthToken("L1", "DB1", "O1")

	re := regexp.MustCompile(`^\S+&L1&DB1&\S+&O1$`)
	if !re.MatchString(plain) {
		t.Fatalf("plain token %q does not match %s", plain, re)
	}

	parts := strings.Split(plain, Delimiter)
	expires, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		t.Fatalf("Expires %q is not ISO-8601: %v", parts[0], err)
	}
	issued, err := time.Parse(time.RFC3339Nano, parts[3])
	if err != nil {
		t.Fatalf("Issued %q is not ISO-8601: %v", parts[3], err)
	}
	if _, offset := issued.Zone(); offset != 0 {
		t.Errorf("Issued offset = %d, want UTC", offset)
	}
	if !strings.HasSuffix(parts[3], "+00:00") {
		t.Errorf("Issued %q should carry +00:00 offset", parts[3])
	}
	if expires.Sub(issued) != 24*time.Hour {
		t.Errorf("Expires - Issued = %v, want 24h", expires.Sub(issued))
	}

	decoded, err := DecodeText(encoded)
	if err != nil {
		t.Fatalf("DecodeText(encoded) error = %v", err)
	}
	if decoded != plain {
		t.Errorf("decoded = %q, want %q", decoded, plain)
	}
}

func TestGenerate_UsesClock(t *testing.T) {
	fixed := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = orig })

	g := Generate("L1", "DB1", "O1")
	want := "2030-06-02T12:00:00+00:00&L1&DB1&2030-06-01T12:00:00+00:00&O1"
	if g.PlainToken != want {
		t.Errorf("PlainToken = %q, want %q", g.PlainToken, want)
	}
}

func TestGenerate_ParsesAsFullForm(t *testing.T) {
	g := GenerateAt(time.Now(), "L1", "DB1", "O1")

	fields := ParseFields(g.PlainToken)
	if !fields.IsFull() {
		t.Fatalf("generated token should parse as full form, got %v", fields)
	}
	if fields.Value(FieldLoginMasterID) != "L1" ||
		fields.Value(FieldDatabaseName) != "DB1" ||
		fields.Value(FieldOrgID) != "O1" {
		t.Errorf("identity fields = %v", fields)
	}
	if fields.Value(FieldIssued) != FormatTimestamp(g.Issued) {
		t.Errorf("Issued = %q, want %q", fields.Value(FieldIssued), FormatTimestamp(g.Issued))
	}
}

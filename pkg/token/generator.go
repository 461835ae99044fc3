// Package token implements the auth token codec.
package token

import (
	"strings"
	"time"
)

// ExpiryOffset is the fixed lifetime embedded in generated tokens.
const ExpiryOffset = 24 * time.Hour

// Timestamp layouts matching ISO-8601 with an explicit UTC offset.
const (
	timestampLayout      = "2006-01-02T15:04:05-07:00"
	timestampMicroLayout = "2006-01-02T15:04:05.000000-07:00"
)

// timeNow is replaced in tests.
var timeNow = time.Now

// Generated is a freshly issued full-form token.
type Generated struct {
	PlainToken   string    `json:"plain_token"`
	EncodedToken string    `json:"encoded_token"`
	Issued       time.Time `json:"issued"`
	Expires      time.Time `json:"expires"`
}

// GenerateAuthToken builds a full-form token issued now and returns its
// plain and encoded forms.
func GenerateAuthToken(loginMasterID, databaseName, orgID string) (plain, encoded string) {
	g := Generate(loginMasterID, databaseName, orgID)
	return g.PlainToken, g.EncodedToken
}

// Generate builds a full-form token issued now.
func Generate(loginMasterID, databaseName, orgID string) Generated {
	return GenerateAt(timeNow(), loginMasterID, databaseName, orgID)
}

// GenerateAt builds a full-form token issued at now.
//
// Field order is Expires, LoginMasterID, Database_Name, Issued, OrgID and
// Expires is always Issued + ExpiryOffset.
func GenerateAt(now time.Time, loginMasterID, databaseName, orgID string) Generated {
	issued := now.UTC().Truncate(time.Microsecond)
	expires := issued.Add(ExpiryOffset)

	plain := strings.Join([]string{
		FormatTimestamp(expires),
		loginMasterID,
		databaseName,
		FormatTimestamp(issued),
		orgID,
	}, Delimiter)

	return Generated{
		PlainToken:   plain,
		EncodedToken: Encode(plain),
		Issued:       issued,
		Expires:      expires,
	}
}

// FormatTimestamp renders t in UTC as ISO-8601 with a "+00:00" offset.
// Sub-second precision is microseconds and is omitted when zero.
func FormatTimestamp(t time.Time) string {
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(timestampLayout)
	}
	return t.Format(timestampMicroLayout)
}

// Package token implements the auth token codec.
//
// A token has two representations:
//
//   - Plain: human-readable fields joined by '&'.
//   - Encoded: standard base64 (with '=' padding) of the plain form's UTF-8 bytes.
//
// Field layout:
//
//   - Full form (5 segments): Expires&LoginMasterID&Database_Name&Issued&OrgID
//   - Short form (any other count): LoginMasterID&Database_Name&OrgID,
//     missing positions are empty and segments past the third are dropped.
//
// Timestamps are ISO-8601 in UTC with a "+00:00" offset and microsecond
// precision, the fraction omitted when it is zero.
//
// The encoding is reversible and carries no confidentiality or integrity
// protection. Normalize accepts a string of unknown form and classifies it by
// attempting a decode: anything that decodes cleanly (including short
// alphanumeric strings such as "YWJj") is treated as encoded.
package token

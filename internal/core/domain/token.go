package domain

import "github.com/yndnr/tokcodec-go/pkg/token"

// Identity holds the three caller-supplied fields of a full-form auth token.
// Values are taken verbatim; empty values produce empty segments.
type Identity struct {
	LoginMasterID string `json:"login_master_id"`
	DatabaseName  string `json:"database_name"`
	OrgID         string `json:"org_id"`
}

// IdentityFromFields extracts the identity fields of a parsed token.
// Absent fields are left empty.
func IdentityFromFields(f token.Fields) Identity {
	return Identity{
		LoginMasterID: f.Value(token.FieldLoginMasterID),
		DatabaseName:  f.Value(token.FieldDatabaseName),
		OrgID:         f.Value(token.FieldOrgID),
	}
}

package domain

import (
	"testing"

	"github.com/yndnr/tokcodec-go/pkg/token"
)

func TestIdentityFromFields(t *testing.T) {
	tests := []struct {
		name  string
		plain string
		want  Identity
	}{
		{
			name:  "full form",
			plain: "2024-01-02T00:00:00+00:00&L1&DB1&2024-01-01T00:00:00+00:00&O1",
			want:  Identity{LoginMasterID: "L1", DatabaseName: "DB1", OrgID: "O1"},
		},
		{
			name:  "short form",
			plain: "L1&DB1&O1",
			want:  Identity{LoginMasterID: "L1", DatabaseName: "DB1", OrgID: "O1"},
		},
		{
			name:  "missing segments",
			plain: "L1",
			want:  Identity{LoginMasterID: "L1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IdentityFromFields(token.ParseFields(tt.plain)); got != tt.want {
				t.Errorf("IdentityFromFields() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIdentityFromFields_Empty(t *testing.T) {
	if got := IdentityFromFields(nil); got != (Identity{}) {
		t.Errorf("IdentityFromFields(nil) = %+v, want zero", got)
	}
}

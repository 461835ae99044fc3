package benchmark

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
	"github.com/yndnr/tokcodec-go/internal/telemetry/metric"
	"github.com/yndnr/tokcodec-go/pkg/token"
)

// SegmentLengths are the identity value lengths used for sized inputs.
var SegmentLengths = []int{8, 64, 512, 4096}

var benchNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newService returns a token service with logging disabled.
func newService() *service.TokenService {
	return service.NewTokenService(
		service.WithLogger(logger.Nop()),
		service.WithMetrics(metric.NewRegistry()),
		service.WithClock(func() time.Time { return benchNow }),
	)
}

// newIdentity returns unique identity values of roughly n bytes each.
func newIdentity(n int) (login, db, org string) {
	id := strings.ToLower(ulid.MustNew(ulid.Timestamp(benchNow), rand.Reader).String())
	pad := func(prefix string) string {
		s := prefix + "-" + id
		if len(s) < n {
			s += strings.Repeat("x", n-len(s))
		}
		return s
	}
	return pad("login"), pad("db"), pad("org")
}

// sampleTokens returns a short plain token, a full plain token and their
// encoded forms, with identity values of about n bytes.
func sampleTokens(n int) (shortPlain, fullPlain, shortEncoded, fullEncoded string) {
	login, db, org := newIdentity(n)
	shortPlain = fmt.Sprintf("%s&%s&%s", login, db, org)
	fullPlain = token.GenerateAt(benchNow, login, db, org).PlainToken
	return shortPlain, fullPlain, token.Encode(shortPlain), token.Encode(fullPlain)
}

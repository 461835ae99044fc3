package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
	"github.com/yndnr/tokcodec-go/pkg/token"
)

// BenchmarkTokenEncode benchmarks base64 encoding of plain tokens.
func BenchmarkTokenEncode(b *testing.B) {
	for _, n := range SegmentLengths {
		b.Run(fmt.Sprintf("segment_%d", n), func(b *testing.B) {
			_, plain, _, _ := sampleTokens(n)
			b.SetBytes(int64(len(plain)))
			b.ReportAllocs()
			for b.Loop() {
				token.Encode(plain)
			}
		})
	}
}

// BenchmarkTokenDecode benchmarks decoding and field parsing.
func BenchmarkTokenDecode(b *testing.B) {
	for _, n := range SegmentLengths {
		b.Run(fmt.Sprintf("segment_%d", n), func(b *testing.B) {
			_, _, _, encoded := sampleTokens(n)
			b.SetBytes(int64(len(encoded)))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := token.Decode(encoded); err != nil {
					b.Fatalf("Decode failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkTokenNormalize benchmarks form detection for both forms.
func BenchmarkTokenNormalize(b *testing.B) {
	shortPlain, fullPlain, shortEncoded, fullEncoded := sampleTokens(64)
	inputs := map[string]string{
		"short_plain":   shortPlain,
		"full_plain":    fullPlain,
		"short_encoded": shortEncoded,
		"full_encoded":  fullEncoded,
		"invalid":       "not base64!",
	}

	for name, raw := range inputs {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				token.Normalize(raw)
			}
		})
	}
}

// BenchmarkTokenGenerate benchmarks full-form token generation.
func BenchmarkTokenGenerate(b *testing.B) {
	login, db, org := newIdentity(16)
	b.ReportAllocs()
	for b.Loop() {
		token.GenerateAt(benchNow, login, db, org)
	}
}

// BenchmarkServiceInspect benchmarks the instrumented service path.
func BenchmarkServiceInspect(b *testing.B) {
	svc := newService()
	ctx := context.Background()
	_, _, _, encoded := sampleTokens(64)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := svc.Inspect(ctx, encoded); err != nil {
			b.Fatalf("Inspect failed: %v", err)
		}
	}
}

// BenchmarkServiceConcurrent benchmarks concurrent generation and
// inspection through the service.
func BenchmarkServiceConcurrent(b *testing.B) {
	svc := newService()
	login, db, org := newIdentity(16)
	id := domain.Identity{LoginMasterID: login, DatabaseName: db, OrgID: org}

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			g := svc.Generate(ctx, id)
			if _, err := svc.Inspect(ctx, g.EncodedToken); err != nil {
				b.Errorf("Inspect failed: %v", err)
				return
			}
		}
	})
}

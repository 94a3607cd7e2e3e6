package version

import (
	"fmt"
	"testing"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/bump"
)

func BenchmarkParseTag(b *testing.B) {
	b.ReportAllocs()

	b.Run("simple", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ParseTag("v1.0.0")
		}
	})

	b.Run("full_format", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ParseTag("v2.0.0-alpha.1+meta.data")
		}
	})

	b.Run("rejected", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ParseTag("foo-v1.0.0")
		}
	})
}

func BenchmarkMax(b *testing.B) {
	versions := make([]Version, 0, 1000)
	for i := 0; i < 1000; i++ {
		versions = append(versions, mustParseTag(fmt.Sprintf("v%d.%d.%d", i/100, i/10%10, i%10)))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Max(versions...)
	}
}

func BenchmarkBump(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Bump("v1.2.3", bump.Minor)
	}
}

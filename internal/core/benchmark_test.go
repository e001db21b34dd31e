package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

// benchmarkCSV builds a contacts file with n data rows. Every tenth row
// has an invalid phone when withErrors is set.
func benchmarkCSV(n int, withErrors bool) string {
	var b strings.Builder
	b.WriteString("name,phone,email,group_id\n")
	for i := 0; i < n; i++ {
		phone := fmt.Sprintf("+1 (555) %03d-%04d", i%1000, i)
		if withErrors && i%10 == 0 {
			phone = "not-a-phone"
		}
		fmt.Fprintf(&b, "\"Contact %d, Jr.\",%s,user%d@example.com,%d\n", i, phone, i, i%7)
	}
	return b.String()
}

// ============================================================================
// Parsing and Validation Benchmarks
// ============================================================================

// BenchmarkParseAndValidate benchmarks a clean file of typical size.
func BenchmarkParseAndValidate(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		raw := benchmarkCSV(n, false)
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(raw)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ParseAndValidate(raw); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkParseAndValidate_WithErrors measures the cost of formatting row
// errors.
func BenchmarkParseAndValidate_WithErrors(b *testing.B) {
	raw := benchmarkCSV(1000, true)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseAndValidate(raw)
	}
}

// BenchmarkValidateRow benchmarks a single row through the field rules.
func BenchmarkValidateRow(b *testing.B) {
	raw := RawRow{
		ColName:    " Jane Smith ",
		ColPhone:   "+1 (555) 010-9999",
		ColEmail:   "jane@example.com",
		ColGroupID: "12",
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		validateRow(1, raw)
	}
}

// ============================================================================
// Import Benchmarks
// ============================================================================

type discardStore struct{}

func (discardStore) BulkCreate(_ context.Context, _ OwnerContext, contacts []NewContact) (BulkCreateResult, error) {
	return BulkCreateResult{CreatedCount: len(contacts)}, nil
}

// BenchmarkImport benchmarks the full pipeline with a store that does no work.
func BenchmarkImport(b *testing.B) {
	raw := benchmarkCSV(1000, false)
	imp := NewImporter(discardStore{})
	owner := OwnerContext{UserID: 1}
	ctx := context.Background()

	b.SetBytes(int64(len(raw)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := imp.Import(ctx, raw, owner); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Input Normalization Benchmarks
// ============================================================================

// BenchmarkImportReader benchmarks BOM stripping and UTF-8 repair on a
// large input.
func BenchmarkImportReader(b *testing.B) {
	raw := "\uFEFF" + benchmarkCSV(1000, false)

	b.SetBytes(int64(len(raw)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := io.Copy(io.Discard, NewImportReader(strings.NewReader(raw))); err != nil {
			b.Fatal(err)
		}
	}
}

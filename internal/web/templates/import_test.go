package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/smsdesk/internal/core"
)

func TestImportResult(t *testing.T) {
	tests := []struct {
		name    string
		outcome core.ImportOutcome
		want    []string
		notWant []string
	}{
		{
			name:    "succeeded",
			outcome: core.ImportOutcome{Success: true, ImportedCount: 3, Errors: []string{}, State: core.StateSucceeded},
			want:    []string{`class="alert alert-success"`, `data-state="succeeded"`, "Successfully imported 3 contacts."},
			notWant: []string{"<ul"},
		},
		{
			name:    "validated",
			outcome: core.ImportOutcome{Success: true, ImportedCount: 2, Errors: []string{}, State: core.StateValidated},
			want:    []string{`class="alert alert-info"`, `data-state="validated"`, "2 contacts are ready to import."},
		},
		{
			name:    "rejected lists row errors",
			outcome: core.ImportOutcome{Errors: []string{"Row 1: Invalid email format", "Row 2: Name and phone are required"}, State: core.StateRejected},
			want: []string{
				`role="alert" data-state="rejected"`,
				"<li>Row 1: Invalid email format</li><li>Row 2: Name and phone are required</li>",
			},
		},
		{
			name:    "error text is escaped",
			outcome: core.ImportOutcome{Errors: []string{`record on line 2: bare " in <script>`}, State: core.StateRejected},
			want:    []string{"&lt;script&gt;", "bare &#34; in"},
			notWant: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			if err := ImportResult(tt.outcome).Render(context.Background(), &b); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			got := b.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("output should not contain %q:\n%s", nw, got)
				}
			}
		})
	}
}

func TestErrorAlert(t *testing.T) {
	var b strings.Builder
	if err := ErrorAlert("File <too> large", "Split & retry", "FILE001").Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := `<div class="alert alert-error" role="alert"><p>File &lt;too&gt; large</p>` +
		`<p class="action">Split &amp; retry</p><p class="code">Code: FILE001</p></div>`
	if got := b.String(); got != want {
		t.Errorf("ErrorAlert() = %q, want %q", got, want)
	}
}

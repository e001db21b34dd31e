package core

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestImportReader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "name,phone\nA,1\n", "name,phone\nA,1\n"},
		{"leading bom", "\xEF\xBB\xBFname,phone\n", "name,phone\n"},
		{"bom only", "\xEF\xBB\xBF", ""},
		{"inner bom kept", "a\xEF\xBB\xBFb", "a\uFEFFb"},
		{"multibyte", "José,Zoë\n", "José,Zoë\n"},
		{"invalid byte", "ab\xFFcd", "ab\uFFFDcd"},
		{"truncated sequence", "x\xE2\x82", "x\uFFFD\uFFFD"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewImportReader(strings.NewReader(tt.in)))
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("read %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImportReader_SmallReads(t *testing.T) {
	in := "\xEF\xBB\xBFname,phone\nZoë,+1 555\n"
	want := "name,phone\nZoë,+1 555\n"

	r := NewImportReader(iotest.OneByteReader(strings.NewReader(in)))
	if err := iotest.TestReader(r, []byte(want)); err != nil {
		t.Error(err)
	}
}

func TestCountingReader(t *testing.T) {
	cr := NewCountingReader(strings.NewReader("hello, world"))
	if _, err := io.ReadAll(cr); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if got := cr.BytesRead(); got != 12 {
		t.Errorf("BytesRead() = %d, want 12", got)
	}
}

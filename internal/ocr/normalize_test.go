package ocr

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  a\tb   c  ", "a b c"},
		{"line1\r\nline2\rline3", "line1\nline2\nline3"},
		{"a\n\n\n\n\nb", "a\n\nb"},
		{"page1\fpage2", "page1\npage2"},
		{"trailing   \nspaces", "trailing\nspaces"},
		{"café", "café"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextFromContentStream(t *testing.T) {
	stream := `q 1 0 0 1 0 0 cm
BT /F1 12 Tf 72 712 Td (Hello \(world\)) Tj ET
BT /F1 12 Tf 72 700 Td [(12) -250 (3 likes)] TJ ET
BT ET
Q`
	got := textFromContentStream(stream)
	want := "Hello (world)\n123 likes"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := map[string]string{
		`plain`:     "plain",
		`a\nb`:      "a\nb",
		`\(x\)`:     "(x)",
		`\\`:        `\`,
		`\101\102`:  "AB",
		`tab\there`: "tab\there",
		`trailing\`: `trailing\`,
	}
	for in, want := range tests {
		if got := decodePDFString(in); got != want {
			t.Errorf("decodePDFString(%q) = %q, want %q", in, got, want)
		}
	}
}

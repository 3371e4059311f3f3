package table

import "testing"

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Krátký text", "kratky_text"},
		{"  PČV ", "pcv"},
		{"Date (from)", "date_from"},
		{"already_snake", "already_snake"},
		{"--", ""},
		{"Value %", "value"},
	}
	for _, tc := range tests {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFoldDiacritics(t *testing.T) {
	t.Parallel()

	if got := FoldDiacritics("Příliš žluťoučký kůň"); got != "Prilis zlutoucky kun" {
		t.Fatalf("FoldDiacritics = %q", got)
	}
}

package datasource

import (
	"testing"

	"domainetl/internal/datasource/file"
	"domainetl/internal/datasource/httpds"
)

func TestForLocator(t *testing.T) {
	t.Parallel()

	src, err := ForLocator("data_sources/a.csv")
	if err != nil {
		t.Fatalf("ForLocator: %v", err)
	}
	if _, ok := src.(*file.Local); !ok {
		t.Fatalf("local path gave %T", src)
	}

	src, err = ForLocator("HTTPS://example.com/a.csv")
	if err != nil {
		t.Fatalf("ForLocator: %v", err)
	}
	if r, ok := src.(*httpds.Remote); !ok || r.URL() != "HTTPS://example.com/a.csv" {
		t.Fatalf("url gave %T", src)
	}

	if _, err := ForLocator(""); err == nil {
		t.Fatalf("expected error for empty locator")
	}
}

// Package datasource opens the bytes behind a data source locator.
//
// A locator is either a local path or an http(s) URL; ForLocator picks the
// matching implementation so extractors never care where bytes come from.
package datasource

import (
	"context"
	"fmt"
	"io"

	"domainetl/internal/catalog"
	"domainetl/internal/datasource/file"
	"domainetl/internal/datasource/httpds"
)

// Source opens a stream of raw bytes. Callers must close the reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// defaultClient serves every remote locator unless ForLocatorWith is used.
var defaultClient = httpds.NewClient(httpds.Config{MaxRetries: 3})

// ForLocator returns a Source for loc using the shared HTTP client for URLs.
func ForLocator(loc string) (Source, error) {
	return ForLocatorWith(loc, defaultClient)
}

// ForLocatorWith is ForLocator with an explicit HTTP client.
func ForLocatorWith(loc string, client *httpds.Client) (Source, error) {
	if loc == "" {
		return nil, fmt.Errorf("datasource: empty locator")
	}
	if catalog.IsURL(loc) {
		return httpds.NewRemote(client, loc), nil
	}
	return file.NewLocal(loc), nil
}

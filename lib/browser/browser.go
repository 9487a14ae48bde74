// Package browser abstracts the page-driving capability the discovery
// strategies run against. The portal is server rendered, so the bundled
// implementation drives it with plain HTTP plus an HTML document model;
// a headless browser can be swapped in behind the same interface.
package browser

import (
	"context"
	"errors"
)

// Element is a normalized snapshot of an interactive page element,
// extracted once per element so recognizers never touch raw nodes.
type Element struct {
	Tag   string
	Text  string
	Attrs map[string]string
}

func (e Element) Attr(key string) string {
	return e.Attrs[key]
}

type Tab struct {
	URL string
}

// Response describes a network response observed while driving the
// page. TabURL is set when the response was loaded into a tab other
// than the origin page.
type Response struct {
	URL         string
	ContentType string
	TabURL      string
}

var ErrNotClickable = errors.New("element cannot be clicked")

type Browser interface {
	// Navigate loads the page and makes it the current document.
	Navigate(ctx context.Context, url string) error
	// Location reports the current document's resolved URL.
	Location() string
	// Elements lists interactive elements matching the selector on
	// the current document.
	Elements(ctx context.Context, selector string) ([]Element, error)
	// Click activates the element. Any responses triggered by the
	// click are published to the response feed before Click returns.
	Click(ctx context.Context, el Element) error
	// OpenTabs lists every tab the session has opened so far.
	OpenTabs(ctx context.Context) ([]Tab, error)
	// Responses exposes the network response feed.
	Responses() *ResponseFeed
	Close() error
}

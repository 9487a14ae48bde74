package shaarolami

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/browser"
)

type InterceptOptions struct {
	Selector    string
	Recognizers []Recognizer
	// DownloadToken marks portal download routes in response URLs.
	DownloadToken string
	// AcceptForeignTabs treats new tabs not equal to the origin page
	// as document sources during the fallback tab scan.
	AcceptForeignTabs bool
}

// InterceptDiscovery clicks every recognized element and captures the
// network responses the click triggers, taking the most recent
// document-looking response as the candidate's locator. When the
// click produced nothing it falls back to scanning open tabs.
type InterceptDiscovery struct {
	browser browser.Browser
	origin  string
	opts    InterceptOptions

	scanned bool
	matched []browser.Element
	index   int
}

func NewInterceptDiscovery(b browser.Browser, origin string, opts InterceptOptions) *InterceptDiscovery {
	if opts.Selector == "" {
		opts.Selector = defaultSelector
	}
	return &InterceptDiscovery{browser: b, origin: origin, opts: opts}
}

func (d *InterceptDiscovery) Next(ctx context.Context) (Candidate, error) {
	ctx, span := tracer.Start(ctx, "InterceptDiscovery.Next")
	defer span.End()

	if !d.scanned {
		err := d.browser.Navigate(ctx, d.origin)
		if err != nil {
			return Candidate{}, err
		}
		d.matched, err = matchElements(ctx, d.browser, d.opts.Selector, d.opts.Recognizers)
		if err != nil {
			return Candidate{}, err
		}
		d.scanned = true
	}

	if d.index >= len(d.matched) {
		return Candidate{}, ErrExhausted
	}
	el := d.matched[d.index]
	d.index++

	candidate := Candidate{DisplayName: el.Text}
	captured, err := captureClick(ctx, d.browser, el, captureOptions{
		downloadToken:     d.opts.DownloadToken,
		acceptForeignTabs: d.opts.AcceptForeignTabs,
		origin:            d.origin,
	})
	if err != nil {
		slog.WarnContext(ctx, "click capture failed", "label", el.Text, "err", err)
		return candidate, nil
	}
	candidate.URL = captured
	return candidate, nil
}

type captureOptions struct {
	downloadToken     string
	acceptForeignTabs bool
	origin            string
}

// captureClick opens a subscription window on the response feed,
// clicks, closes the window and picks the last document-looking
// response (last write wins). An empty result after the tab-scan
// fallback means a discovery miss.
func captureClick(ctx context.Context, b browser.Browser, el browser.Element, opts captureOptions) (string, error) {
	responses, cancel := b.Responses().Subscribe(16)
	err := b.Click(ctx, el)
	cancel()
	if err != nil {
		return "", err
	}

	captured := ""
	for r := range responses {
		if isDocumentResponse(r, opts) {
			captured = r.URL
		}
	}
	if captured != "" {
		return captured, nil
	}

	// empty buffer: maybe the document landed in a tab we opened
	// earlier in the session
	tabs, err := b.OpenTabs(ctx)
	if err != nil {
		return "", err
	}
	for _, tab := range tabs {
		if tab.URL != opts.origin && looksLikeDocumentUrl(tab.URL, opts.downloadToken) {
			captured = tab.URL
		}
	}
	return captured, nil
}

func isDocumentResponse(r browser.Response, opts captureOptions) bool {
	if strings.Contains(strings.ToLower(r.ContentType), "pdf") {
		return true
	}
	if looksLikeDocumentUrl(r.URL, opts.downloadToken) {
		return true
	}
	if opts.acceptForeignTabs && r.TabURL != "" && r.TabURL != opts.origin {
		return true
	}
	return false
}

func looksLikeDocumentUrl(rawUrl, downloadToken string) bool {
	lowered := strings.ToLower(rawUrl)
	if strings.Contains(lowered, "pdf") {
		return true
	}
	return downloadToken != "" && strings.Contains(lowered, strings.ToLower(downloadToken))
}

func resolveAgainst(base, href string) string {
	baseUrl, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseUrl.ResolveReference(ref).String()
}

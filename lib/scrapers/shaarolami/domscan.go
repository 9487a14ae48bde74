package shaarolami

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/browser"
)

const defaultSelector = "a, button, li"

type DOMScanOptions struct {
	// Selector narrows which elements are considered interactive.
	// Defaults to anchors, buttons and list items.
	Selector    string
	Recognizers []Recognizer
	// DownloadToken marks portal download routes in response URLs,
	// used when a matched element has no href and must be clicked.
	DownloadToken string
	// AcceptForeignTabs also treats unsolicited new tabs as document
	// sources when click interception found nothing. Off by default,
	// the portal sometimes opens unrelated tabs.
	AcceptForeignTabs bool
}

// DOMScanDiscovery scans the origin page for elements whose visible
// text a recognizer accepts. Elements carrying an href resolve
// directly; the rest are clicked and their response intercepted.
type DOMScanDiscovery struct {
	browser browser.Browser
	origin  string
	opts    DOMScanOptions

	scanned bool
	matched []browser.Element
	index   int
}

func NewDOMScanDiscovery(b browser.Browser, origin string, opts DOMScanOptions) *DOMScanDiscovery {
	if opts.Selector == "" {
		opts.Selector = defaultSelector
	}
	return &DOMScanDiscovery{browser: b, origin: origin, opts: opts}
}

func (d *DOMScanDiscovery) Next(ctx context.Context) (Candidate, error) {
	ctx, span := tracer.Start(ctx, "DOMScanDiscovery.Next")
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
		slog.DebugContext(ctx, "dom scan complete", "matched", len(d.matched))
	}

	if d.index >= len(d.matched) {
		return Candidate{}, ErrExhausted
	}
	el := d.matched[d.index]
	d.index++

	span.SetAttributes(attribute.String("label", el.Text))

	candidate := Candidate{DisplayName: el.Text}
	if href := el.Attr("href"); href != "" {
		candidate.URL = resolveAgainst(d.browser.Location(), href)
		return candidate, nil
	}

	// no href: click it and watch what comes back
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

package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/htmlutil"
)

// StaticBrowser drives a server-rendered site over plain HTTP. It
// keeps exactly one current document; anchors with target=_blank open
// logical tabs instead of replacing it.
type StaticBrowser struct {
	http     *resty.Client
	feed     *ResponseFeed
	location string
	doc      *goquery.Document
	tabs     []Tab
}

func NewStaticBrowser(client *resty.Client) *StaticBrowser {
	return &StaticBrowser{
		http: client,
		feed: NewResponseFeed(),
	}
}

func (b *StaticBrowser) Navigate(ctx context.Context, pageUrl string) error {
	res, err := b.http.R().
		SetContext(ctx).
		Get(pageUrl)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", pageUrl, err)
	}
	if res.IsError() {
		return fmt.Errorf("navigate %s: status %d", pageUrl, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return fmt.Errorf("navigate %s: parse: %w", pageUrl, err)
	}

	b.doc = doc
	b.location = finalUrl(res, pageUrl)
	return nil
}

func (b *StaticBrowser) Location() string {
	return b.location
}

func (b *StaticBrowser) Elements(ctx context.Context, selector string) ([]Element, error) {
	if b.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var elements []Element
	for _, node := range b.doc.Find(selector).Nodes {
		attrs := make(map[string]string, len(node.Attr))
		for _, a := range node.Attr {
			attrs[a.Key] = a.Val
		}
		elements = append(elements, Element{
			Tag:   node.Data,
			Text:  strings.TrimSpace(htmlutil.GetText(node)),
			Attrs: attrs,
		})
	}
	return elements, nil
}

// Click follows the element's link. The response is recorded into the
// feed; HTML responses on the same tab replace the current document,
// while target=_blank links become new tabs.
func (b *StaticBrowser) Click(ctx context.Context, el Element) error {
	href := el.Attr("href")
	if href == "" {
		href = el.Attr("data-url")
	}
	if href == "" {
		return ErrNotClickable
	}

	target, err := b.resolve(href)
	if err != nil {
		return err
	}

	res, err := b.http.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return fmt.Errorf("click %s: %w", target, err)
	}

	response := Response{
		URL:         finalUrl(res, target),
		ContentType: res.Header().Get("Content-Type"),
	}

	if el.Attr("target") == "_blank" {
		response.TabURL = response.URL
		b.tabs = append(b.tabs, Tab{URL: response.URL})
	} else if strings.Contains(response.ContentType, "text/html") {
		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err == nil {
			b.doc = doc
			b.location = response.URL
		}
	}

	b.feed.Publish(response)
	return nil
}

func (b *StaticBrowser) OpenTabs(ctx context.Context) ([]Tab, error) {
	return b.tabs, nil
}

func (b *StaticBrowser) Responses() *ResponseFeed {
	return b.feed
}

func (b *StaticBrowser) Close() error {
	b.doc = nil
	b.tabs = nil
	return nil
}

func (b *StaticBrowser) resolve(href string) (string, error) {
	base, err := url.Parse(b.location)
	if err != nil {
		return "", fmt.Errorf("resolve %s: bad location %s: %w", href, b.location, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func finalUrl(res *resty.Response, fallback string) string {
	raw := res.RawResponse
	if raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String()
	}
	return fallback
}

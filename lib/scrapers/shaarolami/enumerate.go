package shaarolami

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mazen160/go-random"
	"golang.org/x/time/rate"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/htmlutil"
)

// ChapterPage is a populated tariff chapter page found by the
// enumeration sweep, already fetched and text-projected.
type ChapterPage struct {
	ID      int64
	Name    string
	Content string
	HSCodes []string
	// CodeCount is the untruncated count, callers may truncate HSCodes.
	CodeCount int
}

type EnumerationOptions struct {
	// DetailUrlTemplate is the templated detail page route, with one
	// %d verb for the chapter identifier.
	DetailUrlTemplate string
	// IndexUrl, when set, is scraped for additional identifiers
	// before the sweep starts.
	IndexUrl string
	// IndexIdPattern extracts identifiers out of the index markup.
	// Must have one numeric capture group.
	IndexIdPattern string
	// SeedIds are known-working identifiers, preserved as an opaque
	// list: the portal's id space has no documented structure.
	SeedIds []int64
	// RangeStart/RangeEnd bound the brute-force sweep, inclusive.
	RangeStart int64
	RangeEnd   int64
	// MinTextLen is the inclusive acceptance threshold on extracted
	// text length in runes. A page at exactly MinTextLen is accepted,
	// one rune below is rejected. This is the only "found" signal the
	// portal gives.
	MinTextLen int
	// Delay paces probes; JitterMs adds up to that many extra
	// milliseconds of random wait per probe.
	Delay    time.Duration
	JitterMs int
}

// EnumerationDiscovery sweeps a bounded identifier space of detail
// pages. Empty and error pages are skipped silently: absence of
// content is the portal's only not-found signal.
type EnumerationDiscovery struct {
	client  *Client
	opts    EnumerationOptions
	limiter *rate.Limiter

	ids    []int64
	index  int
	seeded bool
}

func NewEnumerationDiscovery(client *Client, opts EnumerationOptions) *EnumerationDiscovery {
	if opts.MinTextLen == 0 {
		opts.MinTextLen = 600
	}
	if opts.Delay == 0 {
		opts.Delay = time.Millisecond * 400
	}
	if opts.IndexIdPattern == "" {
		opts.IndexIdPattern = `customsItemId=(\d+)`
	}
	return &EnumerationDiscovery{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.Delay), 1),
	}
}

func (d *EnumerationDiscovery) Next(ctx context.Context) (ChapterPage, error) {
	ctx, span := tracer.Start(ctx, "EnumerationDiscovery.Next")
	defer span.End()

	if !d.seeded {
		err := d.buildIdList(ctx)
		if err != nil {
			return ChapterPage{}, err
		}
		d.seeded = true
	}

	for d.index < len(d.ids) {
		id := d.ids[d.index]
		d.index++

		err := d.wait(ctx)
		if err != nil {
			return ChapterPage{}, err
		}

		page, ok, err := d.probe(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "chapter probe failed", "id", id, "err", err)
			continue
		}
		if !ok {
			slog.DebugContext(ctx, "empty chapter page", "id", id)
			continue
		}
		return page, nil
	}

	return ChapterPage{}, ErrExhausted
}

func (d *EnumerationDiscovery) wait(ctx context.Context) error {
	err := d.limiter.Wait(ctx)
	if err != nil {
		return err
	}
	if d.opts.JitterMs > 0 {
		jitter, err := random.IntRange(0, d.opts.JitterMs)
		if err == nil {
			select {
			case <-time.After(time.Duration(jitter) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func (d *EnumerationDiscovery) probe(ctx context.Context, id int64) (ChapterPage, bool, error) {
	res, err := d.client.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf(d.opts.DetailUrlTemplate, id))
	if err != nil {
		return ChapterPage{}, false, err
	}
	if res.IsError() {
		return ChapterPage{}, false, nil
	}

	body := string(res.Body())
	text := htmlutil.ExtractText(body)
	if utf8.RuneCountInString(text) < d.opts.MinTextLen {
		return ChapterPage{}, false, nil
	}

	codes := ExtractCodes(body)
	return ChapterPage{
		ID:        id,
		Name:      pageTitle(res.Body()),
		Content:   text,
		HSCodes:   codes,
		CodeCount: len(codes),
	}, true, nil
}

func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return ""
	}
	return doc.Find("title").First().Text()
}

// buildIdList merges index-scraped ids, the opaque seed list and the
// sweep range, in that order, deduplicated.
func (d *EnumerationDiscovery) buildIdList(ctx context.Context) error {
	var ids []int64
	seen := map[int64]bool{}
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if d.opts.IndexUrl != "" {
		scraped, err := d.scrapeIndexIds(ctx)
		if err != nil {
			slog.WarnContext(ctx, "failed to scrape index ids", "err", err)
		}
		for _, id := range scraped {
			add(id)
		}
	}
	for _, id := range d.opts.SeedIds {
		add(id)
	}
	for id := d.opts.RangeStart; id <= d.opts.RangeEnd && d.opts.RangeEnd > 0; id++ {
		add(id)
	}

	d.ids = ids
	return nil
}

// scrapeIndexIds collects detail page identifiers from the index
// page's anchors. Some index revisions put the id in onclick handlers
// instead of hrefs, so an anchorless scrape falls back to matching the
// raw markup.
func (d *EnumerationDiscovery) scrapeIndexIds(ctx context.Context) ([]int64, error) {
	pattern, err := regexp.Compile(d.opts.IndexIdPattern)
	if err != nil {
		return nil, err
	}

	res, err := d.client.Http.R().
		SetContext(ctx).
		Get(d.opts.IndexUrl)
	if err != nil {
		return nil, err
	}

	var ids []int64
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err == nil {
		for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("a")) {
			ids = append(ids, matchIds(pattern, anchor.Href)...)
		}
	}
	if len(ids) == 0 {
		ids = matchIds(pattern, string(res.Body()))
	}
	return ids, nil
}

func matchIds(pattern *regexp.Regexp, s string) []int64 {
	var ids []int64
	for _, groups := range pattern.FindAllStringSubmatch(s, -1) {
		if len(groups) < 2 {
			continue
		}
		id, err := strconv.ParseInt(groups[1], 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

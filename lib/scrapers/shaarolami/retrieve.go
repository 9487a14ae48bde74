package shaarolami

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrTooManyRedirects  = errors.New("too many redirects")
	ErrUndersizedPayload = errors.New("payload below minimum document size")
)

// redirect chains on the portal are short in practice, the cap only
// guards against malformed loops
const maxRedirectHops = 10

// Retrieve fetches the raw document bytes at the locator, following
// 3xx redirect chains by hand up to the hop cap. Non-success statuses,
// transport errors and implausibly small payloads all fail retrieval.
func (c *Client) Retrieve(ctx context.Context, fetchUrl string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("url", fetchUrl))

	current := fetchUrl
	for hop := 0; hop < maxRedirectHops; hop++ {
		res, err := c.raw.R().
			SetContext(ctx).
			Get(current)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "transport failure")
			return nil, fmt.Errorf("retrieve %s: %w", current, err)
		}

		switch res.StatusCode() {
		case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
			http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
			location := res.Header().Get("Location")
			if location == "" {
				return nil, fmt.Errorf("retrieve %s: redirect without location", current)
			}
			current = resolveAgainst(current, location)
			continue
		}

		if res.IsError() {
			span.SetStatus(codes.Error, "bad status")
			return nil, fmt.Errorf("retrieve %s: status %d", current, res.StatusCode())
		}

		body := res.Body()
		if len(body) < c.minDocumentBytes {
			span.SetStatus(codes.Error, "undersized payload")
			return nil, fmt.Errorf(
				"retrieve %s: %d bytes: %w",
				current, len(body), ErrUndersizedPayload,
			)
		}
		return body, nil
	}

	return nil, fmt.Errorf("retrieve %s: %w", fetchUrl, ErrTooManyRedirects)
}

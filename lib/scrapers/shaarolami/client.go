// Package shaarolami scrapes the Shaar Olami customs portal: a server
// rendered, Hebrew, position dependent site with no public API. The
// package houses the link discovery strategies, the document
// classifier, the HS code extractor and raw document retrieval.
package shaarolami

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/restyutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/telemetry"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Client struct {
	BaseUrl *url.URL
	// Http follows redirects within the portal's domain, used for page
	// navigation and enumeration probes.
	Http *resty.Client
	// raw never follows redirects, Retrieve walks redirect chains by
	// hand with it.
	raw *resty.Client

	minDocumentBytes int
}

type ClientOptions struct {
	BaseUrl string
	Timeout time.Duration
	// MinDocumentBytes is the smallest payload accepted as a real
	// document, anything under it is treated as a placeholder page.
	// Zero means the observed portal default of 1000 bytes.
	MinDocumentBytes int
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.MinDocumentBytes == 0 {
		opts.MinDocumentBytes = 1000
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "scrapers/shaarolami/http")

	raw := resty.New()
	raw.SetCookieJar(jar)
	raw.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(raw.GetClient().Transport)
	raw.SetHeader("user-agent", userAgent)
	// hand 3xx responses back unfollowed with a nil error, Retrieve
	// walks the chain itself. NoRedirectPolicy would surface them as
	// transport errors instead.
	raw.GetClient().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	raw.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(raw, "scrapers/shaarolami/raw")

	c := &Client{
		BaseUrl:          baseUrl,
		Http:             client,
		raw:              raw,
		minDocumentBytes: opts.MinDocumentBytes,
	}
	return c, nil
}

func (c *Client) SetInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, out)
	restyutil.InstrumentClient(c.raw, out)
}

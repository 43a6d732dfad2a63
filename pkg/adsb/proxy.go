package adsb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ProxyOptions configures a ProxyClient.
type ProxyOptions struct {
	// BaseURL is the proxy root, e.g. a cmd/skyportal-proxy deployment.
	// Any access key is carried in the URL itself; no headers are set.
	BaseURL string

	// Lat/Lon center the point query, decimal degrees.
	Lat float64
	Lon float64

	// Radius is the search radius forwarded to the proxy.
	Radius int

	// Timeout bounds one request (default: DefaultTimeout).
	Timeout time.Duration

	// MinInterval is the floor between successive calls; zero disables it.
	MinInterval time.Duration
}

// ProxyClient fetches aircraft records through a skyportal proxy, which
// pre-filters the ADSB.lol response down to airborne traffic for
// memory-constrained displays. The wire shape is identical to ADSB.lol, so
// normalization is shared.
type ProxyClient struct {
	requestURL string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewProxyClient builds a client for the given proxy deployment.
func NewProxyClient(opts ProxyOptions) *ProxyClient {
	return &ProxyClient{
		requestURL: fmt.Sprintf("%s/v2/lat/%g/lon/%g/dist/%d", opts.BaseURL, opts.Lat, opts.Lon, opts.Radius),
		httpClient: newHTTPClient(opts.Timeout),
		limiter:    newSourceLimiter(opts.MinInterval),
	}
}

// Name implements Source.
func (c *ProxyClient) Name() string { return "proxy" }

// BuildRequest implements Source.
func (c *ProxyClient) BuildRequest() (string, http.Header) {
	return c.requestURL, http.Header{}
}

// Fetch implements Source.
func (c *ProxyClient) Fetch(ctx context.Context) ([]byte, error) {
	return fetchBytes(ctx, c.httpClient, c.limiter, c.Name(), c.requestURL, nil)
}

// Normalize implements Source.
func (c *ProxyClient) Normalize(raw []byte) (Batch, error) {
	return normalizeKeyed(c.Name(), raw, adsbLolSchema)
}

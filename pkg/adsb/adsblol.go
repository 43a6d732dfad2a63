package adsb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// AdsbLolURLBase is the production ADSB.lol v2 endpoint.
const AdsbLolURLBase = "https://api.adsb.lol/v2"

// adsbLolSchema describes the ADSB.lol response layout: server time in
// milliseconds under `now`, aircraft records under `ac`. The proxy re-serves
// the identical shape.
var adsbLolSchema = keyedSchema{
	timeField:   "now",
	acField:     "ac",
	timeDivisor: 1000,
}

// AdsbLolOptions configures an AdsbLolClient.
type AdsbLolOptions struct {
	// BaseURL is the API root (default: AdsbLolURLBase).
	BaseURL string

	// Lat/Lon center the point query, decimal degrees.
	Lat float64
	Lon float64

	// Radius is the search radius passed to the API.
	Radius int

	// Timeout bounds one request (default: DefaultTimeout).
	Timeout time.Duration

	// MinInterval is the floor between successive upstream calls; zero
	// disables the gate.
	MinInterval time.Duration
}

// AdsbLolClient fetches aircraft records from the ADSB.lol point query API.
// No authentication is required.
type AdsbLolClient struct {
	requestURL string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAdsbLolClient builds a client for the given point query.
func NewAdsbLolClient(opts AdsbLolOptions) *AdsbLolClient {
	base := opts.BaseURL
	if base == "" {
		base = AdsbLolURLBase
	}

	return &AdsbLolClient{
		requestURL: fmt.Sprintf("%s/lat/%g/lon/%g/dist/%d", base, opts.Lat, opts.Lon, opts.Radius),
		httpClient: newHTTPClient(opts.Timeout),
		limiter:    newSourceLimiter(opts.MinInterval),
	}
}

// Name implements Source.
func (c *AdsbLolClient) Name() string { return "ADSB.lol" }

// BuildRequest implements Source.
func (c *AdsbLolClient) BuildRequest() (string, http.Header) {
	return c.requestURL, http.Header{}
}

// Fetch implements Source.
func (c *AdsbLolClient) Fetch(ctx context.Context) ([]byte, error) {
	return fetchBytes(ctx, c.httpClient, c.limiter, c.Name(), c.requestURL, nil)
}

// Normalize implements Source.
func (c *AdsbLolClient) Normalize(raw []byte) (Batch, error) {
	return normalizeKeyed(c.Name(), raw, adsbLolSchema)
}

// normalizeKeyed converts a keyed-object response (ADSB.lol wire shape) into
// a Batch using the source's field layout. Individual records that fail to
// normalize are counted and skipped.
func normalizeKeyed(name string, raw []byte, schema keyedSchema) (Batch, error) {
	var resp map[string]any
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Batch{}, &UpstreamError{Source: name, Message: fmt.Sprintf("unparseable payload: %v", err)}
	}
	if resp == nil {
		return Batch{}, &UpstreamError{Source: name, Message: "empty response"}
	}

	records, ok := resp[schema.acField].([]any)
	if !ok {
		return Batch{}, &UpstreamError{Source: name, Message: fmt.Sprintf("payload has no %q array", schema.acField)}
	}

	var batch Batch
	if ts := optFloat(resp[schema.timeField]); ts != nil {
		seconds := *ts / schema.timeDivisor
		batch.APITime = time.Unix(0, int64(seconds*float64(time.Second))).UTC()
	}

	batch.Aircraft = make([]AircraftState, 0, len(records))
	for _, entry := range records {
		rec, ok := entry.(map[string]any)
		if !ok {
			batch.Malformed++
			continue
		}
		state, err := StateFromKeyed(rec)
		if err != nil {
			batch.Malformed++
			continue
		}
		batch.Aircraft = append(batch.Aircraft, state)
	}

	return batch, nil
}

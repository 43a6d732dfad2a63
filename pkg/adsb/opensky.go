package adsb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// OpenSkyURLBase is the production OpenSky states endpoint.
const OpenSkyURLBase = "https://opensky-network.org/api/states/all"

// OpenSkyOptions configures an OpenSkyClient.
type OpenSkyOptions struct {
	// BaseURL is the states endpoint (default: OpenSkyURLBase).
	BaseURL string

	// Username/Password for HTTP Basic auth. OpenSky requires an account
	// for the bounding-box query.
	Username string
	Password string

	// LatMin/LatMax/LonMin/LonMax bound the geographic query, degrees.
	LatMin, LatMax float64
	LonMin, LonMax float64

	// Timeout bounds one request (default: DefaultTimeout).
	Timeout time.Duration

	// MinInterval is the floor between successive upstream calls; zero
	// disables the gate.
	MinInterval time.Duration
}

// OpenSkyClient fetches aircraft state vectors from the OpenSky Network
// REST API. Responses carry a `time` field in unix seconds and a `states`
// array of positional vectors.
type OpenSkyClient struct {
	requestURL string
	header     http.Header
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOpenSkyClient builds a client for the given query box and credentials.
// The request URL and auth header are derived once up front.
func NewOpenSkyClient(opts OpenSkyOptions) *OpenSkyClient {
	base := opts.BaseURL
	if base == "" {
		base = OpenSkyURLBase
	}

	params := url.Values{}
	params.Set("lamin", fmt.Sprintf("%g", opts.LatMin))
	params.Set("lamax", fmt.Sprintf("%g", opts.LatMax))
	params.Set("lomin", fmt.Sprintf("%g", opts.LonMin))
	params.Set("lomax", fmt.Sprintf("%g", opts.LonMax))
	// extended=1 adds the aircraft category field to each vector.
	params.Set("extended", "1")

	header := http.Header{}
	if opts.Username != "" {
		token := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		header.Set("Authorization", "Basic "+token)
	}

	return &OpenSkyClient{
		requestURL: base + "?" + params.Encode(),
		header:     header,
		httpClient: newHTTPClient(opts.Timeout),
		limiter:    newSourceLimiter(opts.MinInterval),
	}
}

// Name implements Source.
func (c *OpenSkyClient) Name() string { return "OpenSky" }

// BuildRequest implements Source.
func (c *OpenSkyClient) BuildRequest() (string, http.Header) {
	return c.requestURL, c.header
}

// Fetch implements Source.
func (c *OpenSkyClient) Fetch(ctx context.Context) ([]byte, error) {
	return fetchBytes(ctx, c.httpClient, c.limiter, c.Name(), c.requestURL, c.header)
}

// openSkyResponse is the wire shape of a states query.
type openSkyResponse struct {
	Time   int64   `json:"time"`
	States [][]any `json:"states"`
}

// Normalize implements Source. Individual vectors that fail to normalize are
// counted and skipped; only an empty or unparseable payload fails the batch.
func (c *OpenSkyClient) Normalize(raw []byte) (Batch, error) {
	var resp *openSkyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Batch{}, &UpstreamError{Source: c.Name(), Message: fmt.Sprintf("unparseable payload: %v", err)}
	}
	if resp == nil || resp.States == nil {
		return Batch{}, &UpstreamError{Source: c.Name(), Message: "empty response"}
	}

	batch := Batch{
		Aircraft: make([]AircraftState, 0, len(resp.States)),
		APITime:  time.Unix(resp.Time, 0).UTC(),
	}
	for _, vector := range resp.States {
		state, err := StateFromOpenSky(vector)
		if err != nil {
			batch.Malformed++
			continue
		}
		batch.Aircraft = append(batch.Aircraft, state)
	}

	return batch, nil
}

package tracker

import (
	"fmt"
	"time"

	"skyportal/pkg/adsb"
	"skyportal/pkg/config"
	"skyportal/pkg/geo"
)

// NewSource builds the configured upstream adapter. OpenSky takes the
// bounding box directly; the point-query sources cover the grid from its
// center. Half the refresh interval doubles as a rate-limit floor so a
// misbehaving caller can never hammer an upstream.
func NewSource(cfg *config.Config, box geo.BoundingBox) (adsb.Source, error) {
	timeout := time.Duration(cfg.Source.RequestTimeoutSeconds) * time.Second
	minInterval := time.Duration(cfg.Source.RefreshIntervalSeconds) * time.Second / 2

	switch cfg.Source.Name {
	case config.SourceOpenSky:
		return adsb.NewOpenSkyClient(adsb.OpenSkyOptions{
			BaseURL:     cfg.Source.BaseURL,
			Username:    cfg.Source.Username,
			Password:    cfg.Source.Password,
			LatMin:      box.LatMin,
			LatMax:      box.LatMax,
			LonMin:      box.LonMin,
			LonMax:      box.LonMax,
			Timeout:     timeout,
			MinInterval: minInterval,
		}), nil
	case config.SourceAdsbLol:
		return adsb.NewAdsbLolClient(adsb.AdsbLolOptions{
			BaseURL: cfg.Source.BaseURL,
			Lat:     cfg.Map.CenterLat,
			Lon:     cfg.Map.CenterLon,
			// The point query wants a radius; twice the grid width covers
			// the corners with room to spare.
			Radius:      int(cfg.Map.GridWidthMiles) * 2,
			Timeout:     timeout,
			MinInterval: minInterval,
		}), nil
	case config.SourceProxy:
		return adsb.NewProxyClient(adsb.ProxyOptions{
			BaseURL:     cfg.Source.BaseURL,
			Lat:         cfg.Map.CenterLat,
			Lon:         cfg.Map.CenterLon,
			Radius:      int(cfg.Map.GridWidthMiles) * 2,
			Timeout:     timeout,
			MinInterval: minInterval,
		}), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source.Name)
	}
}

// NewFromConfig wires a controller with the configured source, cadence, and
// filtering policy.
func NewFromConfig(cfg *config.Config, box geo.BoundingBox) (*Controller, error) {
	source, err := NewSource(cfg, box)
	if err != nil {
		return nil, err
	}

	return New(
		source,
		time.Duration(cfg.Source.RefreshIntervalSeconds)*time.Second,
		Policy{
			SkipGround:     cfg.Display.SkipGround,
			AltitudeFloorM: cfg.Display.AltitudeFloorM,
		},
	), nil
}

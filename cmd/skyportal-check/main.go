// Source diagnostic: run one fetch-normalize cycle against the configured
// aircraft API and print what the display would receive. Useful for
// verifying credentials, bounding boxes, and proxy deployments before
// pointing a display at them.
package main

import (
	"context"
	"flag"
	"log"

	"skyportal/internal/tracker"
	"skyportal/pkg/config"
	"skyportal/pkg/geo"
)

const panelAspect = 4.0 / 3.0

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("Source check: %s", cfg.Source.Name)
	log.Printf("Center: %.4f, %.4f  grid width %.0f mi",
		cfg.Map.CenterLat, cfg.Map.CenterLon, cfg.Map.GridWidthMiles)
	log.Println("=====================================")

	box, err := geo.BuildBoundingBox(cfg.Map.CenterLat, cfg.Map.CenterLon, cfg.Map.GridWidthMiles, panelAspect)
	if err != nil {
		log.Fatalf("Invalid map configuration: %v", err)
	}
	log.Printf("Bounding box: lat %.4f..%.4f  lon %.4f..%.4f",
		box.LatMin, box.LatMax, box.LonMin, box.LonMax)

	source, err := tracker.NewSource(cfg, box)
	if err != nil {
		log.Fatalf("%v", err)
	}

	url, _ := source.BuildRequest()
	log.Printf("Request URL: %s", url)

	raw, err := source.Fetch(context.Background())
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
	log.Printf("Fetched %d bytes", len(raw))

	batch, err := source.Normalize(raw)
	if err != nil {
		log.Fatalf("Normalize failed: %v", err)
	}

	log.Printf("API time: %s", batch.APITime.UTC().Format("2006-01-02 15:04:05"))
	log.Printf("Records: %d normalized, %d malformed", len(batch.Aircraft), batch.Malformed)
	log.Println("=====================================")

	for i, ac := range batch.Aircraft {
		log.Printf("\nAircraft #%d:", i+1)
		log.Printf("  Label:    %s", ac.Label())
		log.Printf("  Category: %s", ac.Category)
		if ac.Lat != nil && ac.Lon != nil {
			log.Printf("  Position: %.4f, %.4f (in frame: %v)", *ac.Lat, *ac.Lon, box.Contains(*ac.Lat, *ac.Lon))
		} else {
			log.Printf("  Position: unknown")
		}
		if ac.Track != nil {
			log.Printf("  Track:    %03.0f°", *ac.Track)
		}
		if ac.GeoAltitudeM != nil {
			log.Printf("  Altitude: %.0f m", *ac.GeoAltitudeM)
		}
		if ac.GroundSpeedMPS != nil {
			log.Printf("  Speed:    %.0f m/s", *ac.GroundSpeedMPS)
		}
		if ac.OnGround {
			log.Printf("  Status:   on ground")
		}

		if i >= 9 {
			log.Printf("\n... and %d more aircraft", len(batch.Aircraft)-10)
			break
		}
	}

	log.Println("\n=====================================")
	log.Println("Check complete")
}

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"roadindex/pkg/api"
	"roadindex/pkg/cache"
	"roadindex/pkg/controller"
	"roadindex/pkg/fetch"
	"roadindex/pkg/region"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	cacheDir := flag.String("cache-dir", "chunk-cache", "On-disk chunk cache directory")
	cacheMaxBytes := flag.Int64("cache-max-bytes", 256<<20, "Chunk cache byte budget")
	originURL := flag.String("origin-url", "", "Base URL of the chunk origin server")
	regionID := flag.String("region-id", "singapore", "Stable id of the single served region")
	chunkZoom := flag.Uint("chunk-zoom", 14, "Chunk tile zoom level for the served region")
	minLat := flag.Float64("min-lat", 1.15, "Region bounding box: minimum latitude")
	minLon := flag.Float64("min-lon", 103.6, "Region bounding box: minimum longitude")
	maxLat := flag.Float64("max-lat", 1.48, "Region bounding box: maximum latitude")
	maxLon := flag.Float64("max-lon", 104.1, "Region bounding box: maximum longitude")
	flag.Parse()

	if *originURL == "" {
		log.Fatal("--origin-url is required")
	}

	log.Printf("Opening chunk cache at %s (budget %d bytes)...", *cacheDir, *cacheMaxBytes)
	chunkCache, err := cache.Open(cache.Config{Root: *cacheDir, MaxBytes: *cacheMaxBytes})
	if err != nil {
		log.Fatalf("Failed to open chunk cache: %v", err)
	}

	fetcher := fetch.NewHTTPFetcher(*originURL, nil)

	regions := region.Directory{
		{
			ID:        *regionID,
			ChunkZoom: uint32(*chunkZoom),
			Bound:     orb.Bound{Min: orb.Point{*minLon, *minLat}, Max: orb.Point{*maxLon, *maxLat}},
			BaseURL:   *originURL,
		},
	}
	log.Printf("Serving region %q (zoom %d): lat [%.4f, %.4f], lon [%.4f, %.4f]",
		*regionID, *chunkZoom, *minLat, *maxLat, *minLon, *maxLon)

	ctl := controller.New(controller.DefaultConfig(), regions, chunkCache, fetcher)

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(ctl)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

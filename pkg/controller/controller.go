// Package controller implements the update controller (spec §4.H): a
// rate-limited, stateful driver that ties the region directory, chunk
// cache, fetcher, matcher, and next-road predictor together into the single
// public update(location, heading) operation.
package controller

import (
	"context"
	"time"

	"roadindex/pkg/cache"
	"roadindex/pkg/chunk"
	"roadindex/pkg/fetch"
	"roadindex/pkg/geo"
	"roadindex/pkg/match"
	"roadindex/pkg/predict"
	"roadindex/pkg/region"
	"roadindex/pkg/tile"
)

// Config holds the controller's tunable policy knobs.
type Config struct {
	MinUpdateInterval time.Duration
	ChunkRadiusMeters float64
	SwitchScoreDelta  float64
	StableCount       int
	Match             match.Config
	Predict           predict.Config
}

// DefaultConfig returns the spec's default controller policy.
func DefaultConfig() Config {
	return Config{
		MinUpdateInterval: 700 * time.Millisecond,
		ChunkRadiusMeters: 1200,
		SwitchScoreDelta:  6.0,
		StableCount:       2,
		Match:             match.DefaultConfig(),
		Predict:           predict.DefaultConfig(),
	}
}

// Controller holds per-receiver update state. It is not reentrant: callers
// must serialize update calls for a single receiver externally (spec §5).
type Controller struct {
	cfg     Config
	regions region.Directory
	cache   *cache.Cache
	fetcher fetch.Fetcher

	haveLastUpdate bool
	lastUpdateTime time.Time
	lastMatch      *match.Result
	stability      int

	// challenger tracks a candidate segment that differs from lastMatch but
	// hasn't yet accumulated enough consecutive observations to switch.
	// Its run length is tracked independently of stability (which counts
	// dwell time on the accepted segment) so a reconfirmation of lastMatch
	// never inflates a challenger's count.
	haveChallenger  bool
	challengerChunk int
	challengerSeg   int
	challengerCount int
}

// New creates a Controller over the given region directory, chunk cache,
// and chunk fetcher.
func New(cfg Config, regions region.Directory, c *cache.Cache, fetcher fetch.Fetcher) *Controller {
	return &Controller{cfg: cfg, regions: regions, cache: c, fetcher: fetcher}
}

// Update runs one controller cycle for the given location and optional
// heading. now is the caller's wall-clock time, threaded explicitly so the
// rate limiter and cache last-access bookkeeping are deterministic and
// testable.
func (c *Controller) Update(ctx context.Context, loc geo.LatLon, heading *float64, now time.Time) (*match.Result, *predict.Result, error) {
	if c.haveLastUpdate && now.Sub(c.lastUpdateTime) < c.cfg.MinUpdateInterval {
		return c.lastMatch, nil, nil
	}
	c.lastUpdateTime = now
	c.haveLastUpdate = true

	r, ok := c.regions.Find(loc)
	if !ok {
		return nil, nil, nil
	}

	chunks, err := c.loadNeighborhood(ctx, r, loc, now)
	if err != nil {
		return nil, nil, err
	}

	best, found := match.MatchOn(loc, heading, chunks, c.cfg.Match)
	if !found {
		c.lastMatch = nil
		c.stability = 0
		return nil, nil, nil
	}

	accepted := c.applyHysteresis(best)

	var next *predict.Result
	if accepted.ChunkIndex >= 0 && accepted.ChunkIndex < len(chunks) {
		if n, ok := predict.Next(accepted, heading, chunks[accepted.ChunkIndex], c.cfg.Predict); ok {
			next = &n
		}
	}

	return &accepted, next, nil
}

// applyHysteresis decides whether to accept a new candidate match or keep
// the previously accepted one, per spec §4.H.6, and updates controller
// state accordingly. A differing candidate's consecutive-observation count
// is tracked via challenger* fields, independent of stability (the accepted
// segment's own dwell count) — otherwise a run of same-segment
// reconfirmations would inflate the count needed to unseat a challenger
// that hasn't actually appeared that many times.
func (c *Controller) applyHysteresis(candidate match.Result) match.Result {
	switch {
	case c.lastMatch == nil:
		c.stability = 1
		c.clearChallenger()
	case candidate.ChunkIndex == c.lastMatch.ChunkIndex && candidate.SegmentIndex == c.lastMatch.SegmentIndex:
		c.stability++
		c.clearChallenger()
	case candidate.Score+c.cfg.SwitchScoreDelta < c.lastMatch.Score:
		c.stability = 1
		c.clearChallenger()
	default:
		if c.haveChallenger && candidate.ChunkIndex == c.challengerChunk && candidate.SegmentIndex == c.challengerSeg {
			c.challengerCount++
		} else {
			c.haveChallenger = true
			c.challengerChunk = candidate.ChunkIndex
			c.challengerSeg = candidate.SegmentIndex
			c.challengerCount = 1
		}
		if c.challengerCount < c.cfg.StableCount {
			c.stability++
			kept := *c.lastMatch
			return kept
		}
		c.stability = 1
		c.clearChallenger()
	}

	accepted := candidate
	c.lastMatch = &accepted
	return accepted
}

func (c *Controller) clearChallenger() {
	c.haveChallenger = false
	c.challengerChunk = 0
	c.challengerSeg = 0
	c.challengerCount = 0
}

// loadNeighborhood resolves the chunk-tile neighborhood around loc within
// region r, loading each tile from cache or fetching and decoding it from
// the origin on a miss. A tile absent at the origin is skipped, not fatal;
// any other fetch, decode, or cache I/O error aborts the whole update.
func (c *Controller) loadNeighborhood(ctx context.Context, r region.Region, loc geo.LatLon, now time.Time) ([]*chunk.Chunk, error) {
	center := tile.At(loc, r.ChunkZoom)
	ids := tile.Neighborhood(loc, r.ChunkZoom, c.cfg.ChunkRadiusMeters)

	hasCenter := false
	for _, id := range ids {
		if id == center {
			hasCenter = true
			break
		}
	}
	if !hasCenter {
		ids = append(ids, center)
	}

	nowSeconds := float64(now.Unix()) + float64(now.Nanosecond())/1e9

	var chunks []*chunk.Chunk
	for _, id := range ids {
		decoded, ok, err := c.cache.Load(r.ID, int(id.Z), int(id.X), int(id.Y), nowSeconds)
		if err != nil {
			return nil, err
		}
		if ok {
			chunks = append(chunks, decoded)
			continue
		}

		data, present, err := c.fetcher.Fetch(ctx, r, id)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}

		if err := c.cache.Save(r.ID, int(id.Z), int(id.X), int(id.Y), data, nowSeconds); err != nil {
			return nil, err
		}
		decoded, err = chunk.Decode(data)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, decoded)
	}

	return chunks, nil
}

// Package fetch defines the chunk-origin fetcher contract (spec §6) and a
// minimal net/http implementation, grounded on the PMTiles-backed tile
// fetch path from the example pack (the same GET-by-path, status-code
// decision tree, opaque-bytes-or-error shape).
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"roadindex/pkg/region"
	"roadindex/pkg/rierr"
	"roadindex/pkg/tile"
)

// Fetcher retrieves raw chunk container bytes for one tile of one region.
// present is false only when the origin affirmatively reports the tile does
// not exist (e.g. HTTP 404); any other failure is a fatal error.
type Fetcher interface {
	Fetch(ctx context.Context, r region.Region, t tile.ID) (data []byte, present bool, err error)
}

// HTTPFetcher fetches chunk bytes laid out as
// {baseURL}/{regionId}/{z}/{x}/{y}.iarc. Each region carries its own origin
// (region.Region.BaseURL, spec §3); DefaultBaseURL is used only as a
// fallback for regions that don't set one.
type HTTPFetcher struct {
	DefaultBaseURL string
	Client         *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher using http.DefaultClient if client
// is nil. defaultBaseURL is the fallback origin for regions with no
// BaseURL of their own.
func NewHTTPFetcher(defaultBaseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{DefaultBaseURL: defaultBaseURL, Client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, r region.Region, t tile.ID) ([]byte, bool, error) {
	base := r.BaseURL
	if base == "" {
		base = f.DefaultBaseURL
	}
	url := fmt.Sprintf("%s/%s/%d/%d/%d.iarc", base, r.ID, t.Z, t.X, t.Y)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: build request: %v", rierr.ErrFetchFailed, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", rierr.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%w: unexpected status %d", rierr.ErrFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: read body: %v", rierr.ErrFetchFailed, err)
	}

	return data, true, nil
}

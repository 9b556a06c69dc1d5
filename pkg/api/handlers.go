package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"
	"time"

	"roadindex/pkg/geo"
	"roadindex/pkg/match"
	"roadindex/pkg/predict"
	"roadindex/pkg/rierr"
)

// Updater is the controller surface the HTTP layer depends on; satisfied by
// *controller.Controller.
type Updater interface {
	Update(ctx context.Context, loc geo.LatLon, heading *float64, now time.Time) (*match.Result, *predict.Result, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	ctl Updater
}

// NewHandlers creates handlers backed by the given update controller. The
// controller is not reentrant (spec §5); callers must run one *Handlers per
// receiver, or otherwise serialize concurrent requests for the same one.
func NewHandlers(ctl Updater) *Handlers {
	return &Handlers{ctl: ctl}
}

// HandleUpdate handles POST /api/v1/update.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req UpdateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Validate coordinates.
	if err := validateCoord(req.Location); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "location")
		return
	}

	// Update.
	loc := geo.LatLon{Lat: req.Location.Lat, Lon: req.Location.Lng}
	m, next, err := h.ctl.Update(r.Context(), loc, req.Heading, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, rierr.ErrFetchFailed):
			writeError(w, http.StatusBadGateway, "fetch_failed", "")
		case errors.Is(err, rierr.ErrIOFailed):
			writeError(w, http.StatusInternalServerError, "cache_io_failed", "")
		case errors.Is(err, rierr.ErrInvalidHeader), errors.Is(err, rierr.ErrUnsupportedVersion), errors.Is(err, rierr.ErrDecompressionFailed):
			writeError(w, http.StatusInternalServerError, "chunk_decode_failed", "")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	// Build response.
	resp := UpdateResponse{}
	if m != nil {
		resp.Match = &MatchJSON{
			SegmentIndex:   m.SegmentIndex,
			Name:           m.Name,
			DistanceMeters: m.DistanceMeters,
			BearingDegrees: m.BearingDegrees,
			Snapped:        LatLngJSON{Lat: m.Snapped.Lat, Lng: m.Snapped.Lon},
			Score:          m.Score,
		}
	}
	if next != nil {
		resp.Next = &NextJSON{
			SegmentIndex:   next.SegmentIndex,
			Name:           next.Name,
			DistanceMeters: next.DistanceMeters,
			Confidence:     next.Confidence,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}

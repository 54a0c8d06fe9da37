package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/aggregate"
)

// Response is a standard API response wrapper.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Meta  *Meta  `json:"meta,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Meta describes the snapshot and filter a response was computed from.
type Meta struct {
	DatasetID string     `json:"dataset_id"`
	LoadedAt  time.Time  `json:"loaded_at"`
	Records   int        `json:"records"`
	Filtered  int        `json:"filtered"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	writeResponse(w, status, Response{Data: data})
}

// JSONWithMeta writes a 200 OK response carrying snapshot metadata.
func JSONWithMeta(w http.ResponseWriter, data any, meta *Meta) {
	writeResponse(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// JSONError writes a JSON error response.
func JSONError(w http.ResponseWriter, err *Error) {
	writeResponse(w, err.Status, Response{Error: err})
}

// OK writes a 200 OK response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// SummaryResponse is returned by the summary endpoint.
type SummaryResponse struct {
	aggregate.Summary
	ValidDatePercent float64        `json:"valid_date_percent"`
	ServersByZone    map[string]int `json:"servers_by_zone"`
}

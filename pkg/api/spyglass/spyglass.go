// Package spyglass defines the request/response payloads of the public API.
package spyglass

import (
	"github.com/DanYC1503/spyglass/pkg/models"
)

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// ScrapeRequest is the body of POST /api/scrape/all and /api/scrape/:source
type ScrapeRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// ScrapeResponse reports a collection run, including which sources failed.
type ScrapeResponse struct {
	Influencer    string            `json:"influencer"`
	Comments      []models.Comment  `json:"comments"`
	FailedSources map[string]string `json:"failed_sources,omitempty"`
}

// CommentsResponse is the body of GET /api/comments/:influencer
type CommentsResponse struct {
	Influencer string           `json:"influencer"`
	Comments   []models.Comment `json:"comments"`
}

// InfluencersResponse is the body of GET /api/influencers
type InfluencersResponse struct {
	Influencers []models.Influencer `json:"influencers"`
}

// Package bcb provides a client for the Banco Central do Brasil SGS
// (Sistema Gerenciador de Séries Temporais) time series API.
package bcb

import (
	"fmt"
	"time"
)

// Well-known SGS series codes.
const (
	SeriesIPCA  = 433 // IPCA, monthly variation (%)
	SeriesSELIC = 432 // SELIC target rate (% a.a.), daily
)

// dateLayout is the dd/MM/yyyy layout SGS uses for parameters and values.
const dateLayout = "02/01/2006"

// observation is one raw SGS data point.
type observation struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// APIError represents an error response from the SGS API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("BCB SGS API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError is returned when waiting for the limiter fails.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("BCB SGS rate limit wait aborted, retry after %v", e.RetryAfter)
}

package common

import (
	"time"

	"github.com/google/uuid"
)

// StampLayout names generated files so reruns never collide
const StampLayout = "2006-01-02_15-04-05"

// NewRunID generates a unique report run ID with the "run_" prefix
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewStamp formats t for use in output file names
func NewStamp(t time.Time) string {
	return t.Format(StampLayout)
}

package interfaces

import (
	"context"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// WrittenReport describes one exported document.
type WrittenReport struct {
	Format string
	Path   string
	Bytes  []byte
}

// ReportWriter exports an assembled report.
type ReportWriter interface {
	Format() string
	Write(ctx context.Context, report *models.Report) (*WrittenReport, error)
}

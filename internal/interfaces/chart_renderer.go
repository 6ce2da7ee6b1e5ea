package interfaces

import (
	"context"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// ChartRenderer draws a chart spec to an image file at dest.
type ChartRenderer interface {
	Render(ctx context.Context, spec models.ChartSpec, dest string) error
}

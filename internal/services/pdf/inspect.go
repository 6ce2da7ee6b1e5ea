package pdf

import (
	"fmt"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Document describes a PDF read back with pdfcpu.
type Document struct {
	PageCount int
	Size      int64
	Encrypted bool
}

var disableConfig sync.Once

// Inspect parses a PDF and reports its page count. It fails for content
// pdfcpu cannot read.
func Inspect(content []byte) (*Document, error) {
	tmp, err := os.CreateTemp("", "minsmy-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp PDF file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}

	return InspectFile(tmp.Name())
}

// InspectFile parses the PDF at path.
func InspectFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	disableConfig.Do(api.DisableConfigDir)
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	return &Document{
		PageCount: ctx.PageCount,
		Size:      info.Size(),
		Encrypted: ctx.Encrypt != nil,
	}, nil
}

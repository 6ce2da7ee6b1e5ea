package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/narrative"
)

type skippedChart struct {
	Key    string `yaml:"key"`
	Reason string `yaml:"reason"`
	Detail string `yaml:"detail,omitempty"`
}

type frontmatter struct {
	models.ReportMeta `yaml:",inline"`
	Charts            []string       `yaml:"charts,omitempty"`
	Skipped           []skippedChart `yaml:"skipped_charts,omitempty"`
}

// Frontmatter renders the report metadata as a YAML document.
func Frontmatter(r *models.Report) ([]byte, error) {
	fm := frontmatter{ReportMeta: r.Meta, Charts: r.ChartKeys()}
	for _, s := range r.Skipped {
		fm.Skipped = append(fm.Skipped, skippedChart{Key: s.Key, Reason: string(s.Reason), Detail: s.Detail})
	}
	out, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	return out, nil
}

// ImageLink renders a chart reference relative to baseDir.
func ImageLink(a models.ChartArtifact, baseDir string) string {
	path := a.Path
	if baseDir != "" {
		if rel, err := filepath.Rel(baseDir, a.Path); err == nil {
			path = rel
		}
	}
	return fmt.Sprintf("![Gráfico sobre %s](%s)", a.Title, filepath.ToSlash(path))
}

// RenderBody serializes the blocks as Markdown. Chart images follow their
// heading line and precede the body. Image paths are relative to baseDir.
func RenderBody(r *models.Report, baseDir string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Meta.Title)
	if !r.Meta.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "*%s, %s*\n\n", r.Meta.Location, narrative.FormatDate(r.Meta.GeneratedAt))
	}

	for _, block := range r.Blocks {
		if block.RawHeading != "" {
			b.WriteString(block.RawHeading)
			b.WriteString("\n\n")
		}
		for _, a := range block.Charts {
			b.WriteString(ImageLink(a, baseDir))
			b.WriteString("\n\n")
		}
		if body := strings.Trim(block.Body, "\n"); body != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// MarkdownWriter writes <out>/ai_insights/insights_<stamp>.md.
type MarkdownWriter struct {
	outputDir string
	logger    arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ReportWriter = (*MarkdownWriter)(nil)

// NewMarkdownWriter creates a Markdown writer rooted at outputDir.
func NewMarkdownWriter(outputDir string, logger arbor.ILogger) *MarkdownWriter {
	return &MarkdownWriter{outputDir: outputDir, logger: logger}
}

// Format returns "markdown".
func (w *MarkdownWriter) Format() string {
	return "markdown"
}

// Path returns the file the report with stamp is written to.
func (w *MarkdownWriter) Path(stamp string) string {
	return filepath.Join(w.outputDir, "ai_insights", "insights_"+stamp+".md")
}

// Write renders frontmatter and body and saves the file.
func (w *MarkdownWriter) Write(ctx context.Context, r *models.Report) (*interfaces.WrittenReport, error) {
	path := w.Path(r.Meta.Stamp)
	dir := filepath.Dir(path)

	fm, err := Frontmatter(r)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(RenderBody(r, dir))
	content := []byte(b.String())

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write markdown report: %w", err)
	}

	w.logger.Info().Str("path", path).Int("bytes", len(content)).Msg("Markdown report written")
	return &interfaces.WrittenReport{Format: w.Format(), Path: path, Bytes: content}, nil
}

// PDFWriter writes <out>/reports/relatorio_vendas_<stamp>.pdf.
type PDFWriter struct {
	outputDir string
	pdf       interfaces.PDFService
	logger    arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ReportWriter = (*PDFWriter)(nil)

// NewPDFWriter creates a PDF writer rooted at outputDir.
func NewPDFWriter(outputDir string, pdf interfaces.PDFService, logger arbor.ILogger) *PDFWriter {
	return &PDFWriter{outputDir: outputDir, pdf: pdf, logger: logger}
}

// Format returns "pdf".
func (w *PDFWriter) Format() string {
	return "pdf"
}

// Path returns the file the report with stamp is written to.
func (w *PDFWriter) Path(stamp string) string {
	return filepath.Join(w.outputDir, "reports", "relatorio_vendas_"+stamp+".pdf")
}

// Write converts the Markdown body to PDF, saves it and returns the bytes.
func (w *PDFWriter) Write(ctx context.Context, r *models.Report) (*interfaces.WrittenReport, error) {
	path := w.Path(r.Meta.Stamp)
	dir := filepath.Dir(path)

	data, err := w.pdf.ConvertMarkdownToPDF(RenderBody(r, dir), r.Meta.Title, dir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write PDF report: %w", err)
	}

	w.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("PDF report written")
	return &interfaces.WrittenReport{Format: w.Format(), Path: path, Bytes: data}, nil
}

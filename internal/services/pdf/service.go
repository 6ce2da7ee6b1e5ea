package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/interfaces"
)

const (
	baseFont     = "Arial"
	baseFontSize = 9.0
	pageMargin   = 15.0
)

// Service implements interfaces.PDFService
type Service struct {
	logger arbor.ILogger
	author string
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		author: "Minsmy AI Sales",
	}
}

// ConvertMarkdownToPDF renders markdown as an A4 document. Images are embedded
// from disk, with relative destinations resolved against baseDir. The output
// is read back before it is returned.
func (s *Service) ConvertMarkdownToPDF(markdown, title, baseDir string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Str("base_dir", baseDir).
		Msg("Converting markdown to PDF")

	markdown = stripFrontmatter(markdown)

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetTitle(title, true)
	doc.SetAuthor(s.author, true)
	doc.SetCreator(s.author, true)
	doc.AliasNbPages("{nb}")

	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetFooterFunc(func() {
		doc.SetY(-10)
		doc.SetFont(baseFont, "I", 7)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 5, tr(fmt.Sprintf("Página %d de {nb}", doc.PageNo())), "", 0, "C", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	})
	doc.AddPage()
	doc.SetFont(baseFont, "", baseFontSize)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	)
	source := []byte(markdown)
	root := md.Parser().Parse(text.NewReader(source))

	r := newRenderer(doc, source, baseDir, tr, s.logger)
	if err := r.render(root); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF")
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	info, err := Inspect(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated PDF is unreadable: %w", err)
	}

	s.logger.Debug().
		Int("pdf_size", buf.Len()).
		Int("pages", info.PageCount).
		Int("images", r.images).
		Int("missing_images", r.missing).
		Msg("PDF generated successfully")
	return buf.Bytes(), nil
}

// stripFrontmatter removes a leading YAML frontmatter block.
func stripFrontmatter(markdown string) string {
	if !strings.HasPrefix(markdown, "---\n") {
		return markdown
	}
	end := strings.Index(markdown[4:], "\n---\n")
	if end == -1 {
		return markdown
	}
	return strings.TrimSpace(markdown[4+end+5:])
}

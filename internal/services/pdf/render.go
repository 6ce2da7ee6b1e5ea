package pdf

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// lineHeight is the height of one line of body text in mm.
const lineHeight = 5.0

type renderer struct {
	pdf     *fpdf.Fpdf
	source  []byte
	baseDir string
	tr      func(string) string
	logger  arbor.ILogger

	size      float64
	bold      bool
	italic    bool
	inHeading bool

	// counters holds the next number of each open list; zero means bulleted.
	counters []int

	images  int
	missing int
}

func newRenderer(pdf *fpdf.Fpdf, source []byte, baseDir string, tr func(string) string, logger arbor.ILogger) *renderer {
	return &renderer{
		pdf:     pdf,
		source:  source,
		baseDir: baseDir,
		tr:      tr,
		logger:  logger,
		size:    baseFontSize,
	}
}

func (r *renderer) render(node ast.Node) error {
	return ast.Walk(node, r.walk)
}

func (r *renderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(baseFont, style, r.size)
}

func (r *renderer) write(s string) {
	r.pdf.Write(lineHeight, r.tr(s))
}

func (r *renderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		return r.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(lineHeight + 2)
		}
	case *ast.TextBlock:
		if !entering && node.NextSibling() != nil {
			r.pdf.Ln(lineHeight)
		}
	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.source)))
			switch {
			case node.HardLineBreak():
				r.pdf.Ln(lineHeight)
			case node.SoftLineBreak():
				r.write(" ")
			}
		}
	case *ast.String:
		if entering {
			r.write(string(node.Value))
		}
	case *ast.Emphasis:
		if node.Level == 2 && r.inHeading {
			break
		}
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.CodeSpan:
		return r.codeSpan(node, entering)
	case *ast.FencedCodeBlock:
		if entering {
			r.codeBlock(node.Lines())
			return ast.WalkSkipChildren, nil
		}
	case *ast.CodeBlock:
		if entering {
			r.codeBlock(node.Lines())
			return ast.WalkSkipChildren, nil
		}
	case *ast.List:
		r.list(node, entering)
	case *ast.ListItem:
		r.listItem(entering)
	case *ast.Image:
		if entering {
			r.image(node)
			return ast.WalkSkipChildren, nil
		}
	case *ast.ThematicBreak:
		if entering {
			left, _, right, _ := r.pdf.GetMargins()
			width, _ := r.pdf.GetPageSize()
			r.pdf.Ln(2)
			r.pdf.Line(left, r.pdf.GetY(), width-right, r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case *extast.Table:
		if entering {
			r.table(node)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *renderer) heading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.Ln(4)
		switch n.Level {
		case 1:
			r.size = 15
		case 2:
			r.size = 12
		case 3:
			r.size = 10.5
		default:
			r.size = 10
		}
		r.bold = true
		r.inHeading = true
		r.updateFont()
		return ast.WalkContinue, nil
	}
	r.inHeading = false
	r.pdf.Ln(lineHeight + 2)
	r.size = baseFontSize
	r.bold = false
	r.updateFont()
	return ast.WalkContinue, nil
}

func (r *renderer) codeSpan(n *ast.CodeSpan, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	r.pdf.SetFont("Courier", "", r.size)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			r.write(string(t.Segment.Value(r.source)))
		}
	}
	r.updateFont()
	return ast.WalkSkipChildren, nil
}

func (r *renderer) codeBlock(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", 8)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.pdf.MultiCell(0, 4, r.tr(string(line.Value(r.source))), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(3)
}

func (r *renderer) list(n *ast.List, entering bool) {
	if entering {
		start := 0
		if n.IsOrdered() {
			start = n.Start
			if start == 0 {
				start = 1
			}
		}
		r.counters = append(r.counters, start)
		return
	}
	r.counters = r.counters[:len(r.counters)-1]
	if len(r.counters) == 0 {
		r.pdf.Ln(2)
	}
}

func (r *renderer) listItem(entering bool) {
	if !entering || len(r.counters) == 0 {
		return
	}
	left, _, _, _ := r.pdf.GetMargins()
	if r.pdf.GetX() > left+0.1 {
		r.pdf.Ln(lineHeight)
	}
	depth := len(r.counters)
	r.pdf.SetX(left + float64(depth-1)*5)
	idx := depth - 1
	if r.counters[idx] > 0 {
		r.write(fmt.Sprintf("%d. ", r.counters[idx]))
		r.counters[idx]++
		return
	}
	r.write("- ")
}

// image embeds a PNG at full text width. A destination that is missing or not
// a readable PNG is replaced by its alt text so one broken chart never fails
// the document.
func (r *renderer) image(n *ast.Image) {
	dest := string(n.Destination)
	path := dest
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}

	left, _, right, _ := r.pdf.GetMargins()
	if r.pdf.GetX() > left+0.1 {
		r.pdf.Ln(lineHeight)
	}

	if err := checkPNG(path); err != nil {
		r.missing++
		r.logger.Warn().Err(err).Str("image", dest).Msg("Image skipped in PDF")
		r.italic = true
		r.updateFont()
		r.write(fmt.Sprintf("[imagem indisponível: %s]", string(n.Text(r.source))))
		r.italic = false
		r.updateFont()
		r.pdf.Ln(lineHeight)
		return
	}

	width, _ := r.pdf.GetPageSize()
	r.pdf.ImageOptions(path, left, -1, width-left-right, 0, true,
		fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}, 0, "")
	r.pdf.Ln(3)
	r.images++
}

func checkPNG(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	if format != "png" {
		return fmt.Errorf("unsupported image format %s", format)
	}
	return nil
}

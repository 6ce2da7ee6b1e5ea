package pdf

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

const (
	tableFontSize   = 8.0
	tableLineHeight = 4.0
	tableMaxLines   = 8
	tableMinColumn  = 12.0
)

func (r *renderer) table(n *extast.Table) {
	var rows [][]string
	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *extast.TableHeader:
				rows = append(rows, r.cells(c))
			case *extast.TableRow:
				rows = append(rows, r.cells(c))
			}
		}
	}
	collect(n)
	r.renderTable(rows)
}

// cells returns the translated text of every cell of a header or row.
func (r *renderer) cells(row ast.Node) []string {
	var out []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			out = append(out, r.tr(strings.TrimSpace(string(cell.Text(r.source)))))
		}
	}
	return out
}

func (r *renderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	numCols := len(rows[0])

	left, _, right, bottom := r.pdf.GetMargins()
	pageWidth, pageHeight := r.pdf.GetPageSize()
	widths := r.columnWidths(rows, numCols, pageWidth-left-right)

	if r.pdf.GetX() > left+0.1 {
		r.pdf.Ln(lineHeight)
	}
	r.pdf.Ln(2)

	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(baseFont, style, tableFontSize)

		lines := 1
		for j, cell := range row {
			if j < numCols {
				if n := len(r.wrap(cell, widths[j]-2)); n > lines {
					lines = n
				}
			}
		}
		if lines > tableMaxLines {
			lines = tableMaxLines
		}

		height := float64(lines)*tableLineHeight + 2
		y := r.pdf.GetY()
		if y+height > pageHeight-bottom {
			r.pdf.AddPage()
			r.pdf.SetFont(baseFont, style, tableFontSize)
			y = r.pdf.GetY()
		}

		x := left
		for j := 0; j < numCols; j++ {
			if i == 0 {
				r.pdf.SetFillColor(230, 230, 230)
				r.pdf.Rect(x, y, widths[j], height, "FD")
			} else {
				r.pdf.Rect(x, y, widths[j], height, "D")
			}
			if j < len(row) {
				r.pdf.SetXY(x+1, y+1)
				r.cellText(row[j], widths[j]-2, lines)
			}
			x += widths[j]
		}
		r.pdf.SetXY(left, y+height)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.pdf.Ln(3)
	r.updateFont()
}

// columnWidths sizes columns by their widest cell, clamped to a third of
// the page, then scaled to fit the available width.
func (r *renderer) columnWidths(rows [][]string, numCols int, available float64) []float64 {
	widths := make([]float64, numCols)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(baseFont, style, tableFontSize)
		for j, cell := range row {
			if j < numCols {
				if w := r.pdf.GetStringWidth(cell) + 4; w > widths[j] {
					widths[j] = w
				}
			}
		}
	}

	total := 0.0
	for j := range widths {
		if widths[j] < tableMinColumn {
			widths[j] = tableMinColumn
		}
		if widths[j] > available/3 && numCols > 1 {
			widths[j] = available / 3
		}
		total += widths[j]
	}

	switch {
	case total > available:
		scale := available / total
		for j := range widths {
			widths[j] *= scale
		}
	case total < available*0.9:
		scale := available * 0.95 / total
		if scale > 1.5 {
			scale = 1.5
		}
		for j := range widths {
			widths[j] *= scale
		}
	}
	return widths
}

// wrap breaks text into lines no wider than width at the current font.
func (r *renderer) wrap(text string, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	space := r.pdf.GetStringWidth(" ")
	var lines []string
	current := words[0]
	currentWidth := r.pdf.GetStringWidth(current)
	for _, word := range words[1:] {
		w := r.pdf.GetStringWidth(word)
		if currentWidth+space+w <= width {
			current += " " + word
			currentWidth += space + w
			continue
		}
		lines = append(lines, current)
		current, currentWidth = word, w
	}
	return append(lines, current)
}

// cellText writes wrapped text, ending with an ellipsis when truncated.
func (r *renderer) cellText(text string, width float64, maxLines int) {
	lines := r.wrap(text, width)
	for i := 0; i < len(lines) && i < maxLines; i++ {
		line := lines[i]
		if i == maxLines-1 && len(lines) > maxLines {
			for r.pdf.GetStringWidth(line+"...") > width && len(line) > 3 {
				line = line[:len(line)-1]
			}
			line += "..."
		}
		r.pdf.CellFormat(width, tableLineHeight, line, "", 2, "L", false, 0, "")
	}
}

package interfaces

// PDFService handles PDF generation from markdown
type PDFService interface {
	// ConvertMarkdownToPDF converts markdown content to a PDF byte slice.
	// Relative image paths are resolved against baseDir.
	ConvertMarkdownToPDF(markdown, title, baseDir string) ([]byte, error)
}

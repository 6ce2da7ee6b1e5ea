package models

import "time"

// ReportBlock is one section of the composed report: a heading, the
// narrative text under it and the charts placed right after the heading.
type ReportBlock struct {
	Heading    string // plain heading text, empty for the preamble
	RawHeading string // heading line as written in the narrative
	Body       string
	ChartKeys  []string
	Charts     []ChartArtifact
}

// Narrative is the text returned by the language model, or a fallback.
type Narrative struct {
	Text     string
	Provider string
	Model    string
	Degraded bool
	Cause    string
}

// ReportMeta is written as frontmatter and used for file naming.
type ReportMeta struct {
	RunID       string    `yaml:"run_id"`
	Title       string    `yaml:"title"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Location    string    `yaml:"location"`
	Provider    string    `yaml:"provider,omitempty"`
	Model       string    `yaml:"model,omitempty"`
	Degraded    bool      `yaml:"narrative_degraded"`
	Stamp       string    `yaml:"-"`
}

// Report is the assembled document handed to the writers.
type Report struct {
	Meta    ReportMeta
	Blocks  []ReportBlock
	Skipped []ChartSkip
}

// ChartKeys returns every chart key referenced by the report, in order.
func (r *Report) ChartKeys() []string {
	var keys []string
	for _, b := range r.Blocks {
		keys = append(keys, b.ChartKeys...)
	}
	return keys
}

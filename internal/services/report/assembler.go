package report

import (
	"strings"
	"unicode"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/charts"
)

// AppendixHeading titles the block holding charts no heading placed.
const AppendixHeading = "Anexo: Gráficos Complementares"

// HeadingRule maps a heading fragment to the charts shown after it.
type HeadingRule struct {
	Fragment  string
	ChartKeys []string
}

// DefaultHeadingRules returns the rules for the analyst report structure,
// evaluated in order.
func DefaultHeadingRules() []HeadingRule {
	return []HeadingRule{
		{Fragment: "Contexto Econômico", ChartKeys: []string{charts.KeyIPCA, charts.KeySELIC}},
		{Fragment: "Performance Financeira", ChartKeys: []string{charts.KeyRevenueVsProfit}},
		{Fragment: "Performance Individual", ChartKeys: []string{charts.KeyProfitBySalesperson, charts.KeySalesBySalesperson}},
		{Fragment: "Análise de Produtos e Categorias", ChartKeys: []string{charts.KeyTopProducts, charts.KeyTopCategories}},
		{Fragment: "Eficiência Operacional", ChartKeys: []string{
			charts.KeyChannels, charts.KeyBranches, charts.KeyStatus,
			charts.KeyReturns, charts.KeyTotalDiscounts, charts.KeyAvgDiscounts,
		}},
	}
}

// Assemble splits the narrative into heading blocks and attaches charts to
// the headings the rules match. Each rule fires on its first matching
// heading only. Keys missing from set are skipped. Narrative order is kept
// and text before the first heading becomes a block without heading.
func Assemble(narrative string, set *models.ChartSet, rules []HeadingRule) []models.ReportBlock {
	blocks := split(narrative)
	fired := make([]bool, len(rules))

	for i := range blocks {
		b := &blocks[i]
		if b.Heading == "" {
			continue
		}
		heading := strings.ToLower(b.Heading)
		for j, rule := range rules {
			if fired[j] || !strings.Contains(heading, strings.ToLower(rule.Fragment)) {
				continue
			}
			fired[j] = true
			for _, key := range rule.ChartKeys {
				a, ok := set.Get(key)
				if !ok || containsKey(b.ChartKeys, key) {
					continue
				}
				b.ChartKeys = append(b.ChartKeys, key)
				b.Charts = append(b.Charts, a)
			}
		}
	}
	return blocks
}

// AppendUnplaced adds a final block with every rendered chart no block
// references. Blocks are returned unchanged when all charts are placed.
func AppendUnplaced(blocks []models.ReportBlock, set *models.ChartSet) []models.ReportBlock {
	placed := make(map[string]bool)
	for _, b := range blocks {
		for _, key := range b.ChartKeys {
			placed[key] = true
		}
	}

	appendix := models.ReportBlock{
		Heading:    AppendixHeading,
		RawHeading: "## " + AppendixHeading,
	}
	for _, a := range set.Ordered() {
		if placed[a.Key] {
			continue
		}
		appendix.ChartKeys = append(appendix.ChartKeys, a.Key)
		appendix.Charts = append(appendix.Charts, a)
	}
	if len(appendix.Charts) == 0 {
		return blocks
	}
	return append(blocks, appendix)
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// split cuts the narrative at heading lines. Lines inside fenced code
// blocks are never headings.
func split(narrative string) []models.ReportBlock {
	var blocks []models.ReportBlock
	var body []string
	current := models.ReportBlock{}
	started := false
	inFence := false

	flush := func() {
		current.Body = strings.Trim(strings.Join(body, "\n"), "\n")
		if started || strings.TrimSpace(current.Body) != "" {
			blocks = append(blocks, current)
		}
		body = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(narrative, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if !inFence {
			if heading, ok := ParseHeading(line); ok {
				flush()
				current = models.ReportBlock{Heading: heading, RawHeading: strings.TrimRight(line, " \t")}
				started = true
				continue
			}
		}
		body = append(body, line)
	}
	flush()
	return blocks
}

// ParseHeading reports whether line is a section heading and returns its
// plain text. A heading is an ATX heading ("## Título") or a line whose
// content, after optional list or number markers, opens with an emphasis
// span ("**Título:** ...", "1. **Título**", "* __Título__").
func ParseHeading(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return "", false
	}

	atx := false
	if strings.HasPrefix(s, "#") {
		level := len(s) - len(strings.TrimLeft(s, "#"))
		rest := s[level:]
		if level <= 6 && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
			atx = true
			s = strings.TrimSpace(rest)
		}
	}

	s = stripListMarker(s)

	for _, delim := range []string{"**", "__"} {
		if !strings.HasPrefix(s, delim) {
			continue
		}
		end := strings.Index(s[len(delim):], delim)
		if end <= 0 {
			continue
		}
		text := cleanHeading(s[len(delim) : len(delim)+end])
		if text != "" {
			return text, true
		}
	}

	if atx {
		text := cleanHeading(strings.NewReplacer("**", "", "__", "").Replace(s))
		return text, text != ""
	}
	return "", false
}

// stripListMarker removes a leading "*", "-", "+" or "12." / "12)" marker.
func stripListMarker(s string) string {
	if len(s) >= 2 && (s[0] == '*' || s[0] == '-' || s[0] == '+') && s[1] == ' ' {
		return strings.TrimSpace(s[2:])
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s)-1 && (s[i] == '.' || s[i] == ')') && s[i+1] == ' ' {
		return strings.TrimSpace(s[i+2:])
	}
	return s
}

// cleanHeading trims whitespace and trailing colons.
func cleanHeading(s string) string {
	return strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ':' || unicode.IsSpace(r)
	})
}

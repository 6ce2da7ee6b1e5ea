package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

func chartSet(keys ...string) *models.ChartSet {
	set := models.NewChartSet()
	for _, k := range keys {
		set.Add(models.ChartArtifact{Key: k, Title: k, Category: "c", Path: "/out/c/" + k + ".png"})
	}
	return set
}

const sampleNarrative = `Introdução livre.

1. **SUMÁRIO EXECUTIVO:** Vendas estáveis.

2. **CONTEXTO ECONÔMICO (ANÁLISE EXTERNA):**
   - **2.1. Cenário Macroeconômico (Brasil):** Juros altos.

### 3.2. Análise de Produtos e Categorias
A Cadeira lidera.

**Plano de Ação Estratégico**
Reduzir descontos.`

func TestParseHeading(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"**SUMÁRIO EXECUTIVO:** texto", "SUMÁRIO EXECUTIVO", true},
		{"1.  **CONTEXTO ECONÔMICO:**", "CONTEXTO ECONÔMICO", true},
		{"   * __3.1. Performance Financeira__", "3.1. Performance Financeira", true},
		{"- **Faturamento:** R$ 10", "Faturamento", true},
		{"## Performance Individual", "Performance Individual", true},
		{"# **Título**", "Título", true},
		{"Texto com **negrito** no meio", "", false},
		{"***", "", false},
		{"#hashtag", "", false},
		{"", "", false},
		{"****", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ParseHeading(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssemble_PreservesOrderAndText(t *testing.T) {
	blocks := Assemble(sampleNarrative, chartSet(), DefaultHeadingRules())

	require.Len(t, blocks, 6)
	assert.Equal(t, "", blocks[0].Heading)
	assert.Equal(t, "Introdução livre.", blocks[0].Body)
	assert.Equal(t, "SUMÁRIO EXECUTIVO", blocks[1].Heading)
	assert.Equal(t, "CONTEXTO ECONÔMICO (ANÁLISE EXTERNA)", blocks[2].Heading)
	assert.Equal(t, "2.1. Cenário Macroeconômico (Brasil)", blocks[3].Heading)
	assert.Equal(t, "3.2. Análise de Produtos e Categorias", blocks[4].Heading)
	assert.Equal(t, "A Cadeira lidera.", blocks[4].Body)
	assert.Equal(t, "Reduzir descontos.", blocks[5].Body)

	for _, b := range blocks {
		assert.Empty(t, b.ChartKeys, "no charts available")
	}
}

func TestAssemble_InsertsChartsAfterMatchingHeading(t *testing.T) {
	set := chartSet("ipca_chart", "selic_chart", "top_products")
	blocks := Assemble(sampleNarrative, set, DefaultHeadingRules())

	assert.Equal(t, []string{"ipca_chart", "selic_chart"}, blocks[2].ChartKeys)
	assert.Empty(t, blocks[3].ChartKeys, "rule fires once")
	assert.Equal(t, []string{"top_products"}, blocks[4].ChartKeys, "absent top_categories skipped")
	assert.Empty(t, blocks[5].ChartKeys, "no rule for this heading")

	body := RenderBody(&models.Report{Meta: models.ReportMeta{Title: "R"}, Blocks: blocks}, "/out/ai_insights")
	econ := strings.Index(body, "CONTEXTO ECONÔMICO")
	macro := strings.Index(body, "2.1. Cenário")
	require.True(t, econ >= 0 && macro > econ)

	section := body[econ:macro]
	assert.Equal(t, 2, strings.Count(section, "![Gráfico sobre"))
	assert.Equal(t, 3, strings.Count(body, "!["))
	assert.Contains(t, section, "(../c/ipca_chart.png)")
}

func TestAssemble_ToleratesMissingSectionsAndEmptyText(t *testing.T) {
	assert.Empty(t, Assemble("", chartSet("ipca_chart"), DefaultHeadingRules()))

	blocks := Assemble("Apenas texto sem seções.", chartSet("ipca_chart"), DefaultHeadingRules())
	require.Len(t, blocks, 1)
	assert.Empty(t, blocks[0].ChartKeys)

	blocks = Assemble("**Contexto Econômico**", nil, DefaultHeadingRules())
	require.Len(t, blocks, 1)
	assert.Empty(t, blocks[0].ChartKeys)
}

func TestAssemble_IgnoresHeadingsInsideCodeFences(t *testing.T) {
	text := "**Resumo**\n```\n**Contexto Econômico**\n```"
	blocks := Assemble(text, chartSet("ipca_chart"), DefaultHeadingRules())

	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Body, "**Contexto Econômico**")
	assert.Empty(t, blocks[0].ChartKeys)
}

func TestAppendUnplaced(t *testing.T) {
	set := chartSet("ipca_chart", "payment_methods", "top_customers")
	blocks := Assemble("**Contexto Econômico**\ntexto", set, DefaultHeadingRules())

	blocks = AppendUnplaced(blocks, set)
	require.Len(t, blocks, 2)
	assert.Equal(t, AppendixHeading, blocks[1].Heading)
	assert.Equal(t, []string{"payment_methods", "top_customers"}, blocks[1].ChartKeys)

	all := AppendUnplaced(Assemble("**Contexto Econômico**", chartSet("ipca_chart"), DefaultHeadingRules()), chartSet("ipca_chart"))
	assert.Len(t, all, 1)
}

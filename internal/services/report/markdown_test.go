package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

func sampleReport(outDir string) *models.Report {
	set := models.NewChartSet()
	set.Add(models.ChartArtifact{
		Key:      "revenue_vs_profit",
		Title:    "Faturamento vs. Lucro por Vendedor",
		Category: "profit",
		Path:     filepath.Join(outDir, "profit", "revenue_vs_profit_2026-10-19_10-00-00.png"),
	})
	blocks := Assemble("**3.1. Performance Financeira**\nMargem de 30%.", set, DefaultHeadingRules())
	return &models.Report{
		Meta: models.ReportMeta{
			RunID:       "run_test",
			Title:       "Relatório de Análise de Vendas",
			GeneratedAt: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
			Location:    "Jaraguá do Sul, SC, Brasil",
			Provider:    "gemini",
			Stamp:       "2026-10-19_10-00-00",
		},
		Blocks:  blocks,
		Skipped: []models.ChartSkip{{Key: "ipca_chart", Reason: models.SkipSourceUnavailable, Detail: "timeout"}},
	}
}

func TestMarkdownWriter_Write(t *testing.T) {
	outDir := t.TempDir()
	w := NewMarkdownWriter(outDir, arbor.NewLogger())

	written, err := w.Write(context.Background(), sampleReport(outDir))
	require.NoError(t, err)

	assert.Equal(t, "markdown", written.Format)
	assert.Equal(t, filepath.Join(outDir, "ai_insights", "insights_2026-10-19_10-00-00.md"), written.Path)

	data, err := os.ReadFile(written.Path)
	require.NoError(t, err)
	content := string(data)

	require.True(t, strings.HasPrefix(content, "---\n"))
	end := strings.Index(content[4:], "---\n")
	require.Greater(t, end, 0)

	var fm map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(content[4:4+end]), &fm))
	assert.Equal(t, "run_test", fm["run_id"])
	assert.Equal(t, false, fm["narrative_degraded"])
	assert.Equal(t, []interface{}{"revenue_vs_profit"}, fm["charts"])

	assert.Contains(t, content, "# Relatório de Análise de Vendas")
	assert.Contains(t, content, "19 de outubro de 2026")
	assert.Contains(t, content, "![Gráfico sobre Faturamento vs. Lucro por Vendedor](../profit/revenue_vs_profit_2026-10-19_10-00-00.png)")

	heading := strings.Index(content, "**3.1. Performance Financeira**")
	image := strings.Index(content, "![Gráfico")
	body := strings.Index(content, "Margem de 30%.")
	assert.True(t, heading < image && image < body)
}

type fakePDF struct {
	markdown string
	baseDir  string
	err      error
}

func (f *fakePDF) ConvertMarkdownToPDF(markdown, title, baseDir string) ([]byte, error) {
	f.markdown = markdown
	f.baseDir = baseDir
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func TestPDFWriter_Write(t *testing.T) {
	outDir := t.TempDir()
	pdf := &fakePDF{}
	w := NewPDFWriter(outDir, pdf, arbor.NewLogger())

	written, err := w.Write(context.Background(), sampleReport(outDir))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "reports", "relatorio_vendas_2026-10-19_10-00-00.pdf"), written.Path)
	assert.Equal(t, []byte("%PDF-1.4 fake"), written.Bytes)
	assert.Equal(t, filepath.Join(outDir, "reports"), pdf.baseDir)
	assert.Contains(t, pdf.markdown, "(../profit/revenue_vs_profit_2026-10-19_10-00-00.png)")
	assert.NotContains(t, pdf.markdown, "run_id")

	data, err := os.ReadFile(written.Path)
	require.NoError(t, err)
	assert.Equal(t, written.Bytes, data)
}

func TestPDFWriter_ConversionError(t *testing.T) {
	outDir := t.TempDir()
	w := NewPDFWriter(outDir, &fakePDF{err: errors.New("bad font")}, arbor.NewLogger())

	_, err := w.Write(context.Background(), sampleReport(outDir))
	assert.Error(t, err)
	_, statErr := os.Stat(w.Path("2026-10-19_10-00-00"))
	assert.True(t, os.IsNotExist(statErr))
}

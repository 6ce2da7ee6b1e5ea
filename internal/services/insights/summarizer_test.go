package insights

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/metrics"
)

func record(person, product, category, status, payment string, price, cost, discount string) models.SalesRecord {
	return models.SalesRecord{
		Salesperson:      person,
		Product:          product,
		Category:         category,
		Status:           status,
		PaymentMethod:    payment,
		CustomerType:     "Varejo",
		Branch:           "Centro",
		Channel:          "Física",
		UnitPrice:        decimal.RequireFromString(price),
		UnitCost:         decimal.RequireFromString(cost),
		Quantity:         decimal.NewFromInt(1),
		DiscountFraction: decimal.RequireFromString(discount),
	}
}

func buildSet(t *testing.T, records []models.SalesRecord) (*models.AggregateSet, models.TeamBaselines) {
	t.Helper()
	table := metrics.Derive(records, models.RequiredColumns)
	set, err := metrics.BuildAggregateSet(table, models.DefaultStatusRules())
	require.NoError(t, err)
	return set, metrics.ComputeBaselines(set)
}

var aggregateNames = []string{
	models.AggTotalNetRevenue, models.AggTotalGrossRevenue, models.AggTotalProfit, models.AggTotalCost,
	models.AggTotalDiscountValue, models.AggProfitMargin, models.AggAvgDiscountRate, models.AggTotalSales,
	models.AggCompletedSales, models.AggReturnedSales, models.AggReturnRate,
	models.AggRevenueBySalesperson, models.AggProfitBySalesperson, models.AggRevenueByCustomerType,
	models.AggAvgTicketByCustomerType, models.AggRevenueByProduct, models.AggProfitByProduct,
	models.AggRevenueByCategory, models.AggDiscountValueBySalesperson, models.AggAvgDiscountBySalesperson,
	models.AggRevenueByBranch, models.AggPaymentMethodCount, models.AggChannelCount,
	models.AggStatusDistribution, models.AggSalesCountBySalesperson, models.AggReturnsBySalesperson,
}

// withoutAggregate copies set, leaving out the named scalar or ranking.
func withoutAggregate(set *models.AggregateSet, name string) *models.AggregateSet {
	out := models.NewAggregateSet()
	for _, n := range aggregateNames {
		if n == name {
			continue
		}
		if v, ok := set.Scalar(n); ok {
			out.SetScalar(n, v)
		}
		if r, ok := set.Ranking(n); ok {
			out.SetRanking(n, r)
		}
	}
	out.SetLeaders(set.Leaders())
	out.SetProfiles(set.Profiles())
	return out
}

func sampleRecords() []models.SalesRecord {
	return []models.SalesRecord{
		record("Ana", "Cadeira", "Móveis", "Concluída", "Pix", "1500", "600", "0.1"),
		record("Bia", "Mesa", "Móveis", "Concluída", "Cartão", "800", "300", "0"),
		record("Ana", "Abajur", "Iluminação", "Devolvida", "Pix", "50", "20", "0"),
		record("Caio", "Abajur", "Iluminação", "Concluída", "Boleto", "60", "20", "0.05"),
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatCurrency(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "R$ 90,00", FormatCurrency(decimal.NewFromInt(90)))
	assert.Equal(t, "12,5%", FormatPercent(decimal.RequireFromString("0.125"), 1))
	assert.Equal(t, "10,00%", FormatPercent(decimal.RequireFromString("0.1"), 2))
	assert.Equal(t, "1.200", FormatCount(decimal.NewFromInt(1200)))
}

func TestSummarize_SectionsInFixedOrder(t *testing.T) {
	set, baselines := buildSet(t, sampleRecords())

	text, err := Summarize(set, baselines)
	require.NoError(t, err)

	order := []string{
		"Métricas Gerais da Equipe",
		"Lucro Total",
		"Lucro por Vendedor",
		"Top 5 Tipos de Cliente",
		"Top 5 Produtos",
		"Top 5 Categorias",
		"Produto Mais Vendido por Categoria",
		"Distribuição dos Métodos de Pagamento",
		"Vendedores por Total de Desconto",
		"Vendedores por Média de Desconto",
		"Vendedores com Mais Devoluções",
		"Status Geral das Vendas",
	}
	last := -1
	for _, heading := range order {
		idx := strings.Index(text, heading)
		require.NotEqual(t, -1, idx, heading)
		assert.Greater(t, idx, last, heading)
		last = idx
	}

	assert.True(t, strings.HasPrefix(text, "RESUMO DOS DADOS QUANTITATIVOS"))
	assert.Contains(t, text, "Lucro Líquido Total: R$ 1.287,00")
	assert.Contains(t, text, "Faturamento médio por vendedor: R$ 735,67")
	assert.Contains(t, text, "Ana: 1 devoluções")
	assert.Contains(t, text, "Móveis: Cadeira")
	assert.Contains(t, text, "Concluída: 3")
	assert.Contains(t, text, "Pix: 50,0%")
}

func TestSummarize_OmitsReturnsWhenNone(t *testing.T) {
	records := sampleRecords()
	records[2].Status = "Concluída"
	set, baselines := buildSet(t, records)

	text, err := Summarize(set, baselines)
	require.NoError(t, err)
	assert.NotContains(t, text, "Vendedores com Mais Devoluções")
}

func TestSummarize_MissingAggregate(t *testing.T) {
	set, baselines := buildSet(t, sampleRecords())

	text, err := Summarize(withoutAggregate(set, models.AggRevenueByProduct), baselines)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.True(t, strings.HasPrefix(text, FailurePrefix))
	assert.Contains(t, text, models.AggRevenueByProduct)

	text, err = Summarize(nil, baselines)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.True(t, strings.HasPrefix(text, FailurePrefix))
}

func TestSummarize_TopNAndEconomicContext(t *testing.T) {
	set, baselines := buildSet(t, sampleRecords())
	ec := &models.EconomicContext{
		IPCA: &models.IndicatorSeries{Points: []models.IndicatorPoint{
			{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Value: 0.42},
		}},
	}

	text, err := NewSummarizer(WithTopN(1), WithEconomicContext(ec)).Summarize(set, baselines)
	require.NoError(t, err)

	assert.Contains(t, text, "Top 1 Produtos por Faturamento")
	assert.Contains(t, text, "IPCA (variação mensal, 08/2026): 0,42%")
	assert.NotContains(t, text, "SELIC")
}

package charts

import (
	"fmt"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/services/metrics"
)

// Chart keys shared with the report heading rules.
const (
	KeySalesBySalesperson  = "sales_by_salesperson"
	KeyTopCustomers        = "top_customers"
	KeyPaymentMethods      = "payment_methods"
	KeyTotalDiscounts      = "total_discounts"
	KeyAvgDiscounts        = "avg_discounts"
	KeyChannels            = "channels"
	KeyBranches            = "branches"
	KeyStatus              = "status"
	KeyReturns             = "returns"
	KeyProfitBySalesperson = "profit_by_salesperson"
	KeyTopProducts         = "top_products"
	KeyTopCategories       = "top_categories"
	KeyRevenueVsProfit     = "revenue_vs_profit"
	KeyIPCA                = "ipca_chart"
	KeySELIC               = "selic_chart"
)

// Input is everything a definition may draw from. Colors is computed once
// per run so a salesperson keeps the same colour in every chart.
type Input struct {
	Views    metrics.Views
	Economic *models.EconomicContext
	Colors   ColorMap
	TopN     int
}

// Built is the outcome of building one chart: a spec to render or a skip.
type Built struct {
	Spec *models.ChartSpec
	Skip *models.ChartSkip
}

func built(spec models.ChartSpec) Built {
	return Built{Spec: &spec}
}

func skipped(key string, reason models.SkipReason, detail string) Built {
	return Built{Skip: &models.ChartSkip{Key: key, Reason: reason, Detail: detail}}
}

// Definition is one chart group: the columns it needs and how to turn the
// input into chart specs. A group may produce several keys.
type Definition struct {
	Group    string
	Keys     []string
	Required []string
	Build    func(in *Input) ([]Built, error)
}

// DefaultDefinitions returns the report's chart groups in render order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Group:    "salesperson_revenue",
			Keys:     []string{KeySalesBySalesperson},
			Required: []string{models.ColSalesperson, models.ColNetValue},
			Build: func(in *Input) ([]Built, error) {
				r, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: models.OpSum,
				})
				if err != nil {
					return nil, err
				}
				return []Built{rankingBar(KeySalesBySalesperson, "Total de Vendas por Vendedor", "total_amount_of_sales",
					"sales_per_salesperson", r, models.FormatCurrency, in.Colors.Color)}, nil
			},
		},
		{
			Group:    "customers",
			Keys:     []string{KeyTopCustomers},
			Required: []string{models.ColCustomerType, models.ColNetValue},
			Build: func(in *Input) ([]Built, error) {
				r, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColCustomerType, MetricKey: models.ColNetValue, Op: models.OpSum, TopN: in.TopN,
				})
				if err != nil {
					return nil, err
				}
				return []Built{rankingBar(KeyTopCustomers, fmt.Sprintf("Top %d Tipos de Cliente por Faturamento", in.TopN),
					"customers", "top_customers", r, models.FormatCurrency, nil)}, nil
			},
		},
		{
			Group:    "payment_methods",
			Keys:     []string{KeyPaymentMethods},
			Required: []string{models.ColPaymentMethod},
			Build: func(in *Input) ([]Built, error) {
				r, err := metrics.Aggregate(in.Views.All, metrics.AggregateSpec{
					GroupKey: models.ColPaymentMethod, Op: models.OpCount,
				})
				if err != nil {
					return nil, err
				}
				return []Built{pie(KeyPaymentMethods, "Distribuição dos Métodos de Pagamento",
					"payment_methods", "payment_methods", r)}, nil
			},
		},
		{
			Group:    "discounts",
			Keys:     []string{KeyTotalDiscounts, KeyAvgDiscounts},
			Required: []string{models.ColSalesperson, models.ColDiscountValue, models.ColDiscount},
			Build: func(in *Input) ([]Built, error) {
				total, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColSalesperson, MetricKey: models.ColDiscountValue, Op: models.OpSum,
				})
				if err != nil {
					return nil, err
				}
				avg, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColSalesperson, MetricKey: models.ColDiscount, Op: models.OpMean,
				})
				if err != nil {
					return nil, err
				}
				return []Built{
					rankingBar(KeyTotalDiscounts, "Total de Descontos Concedidos por Vendedor (R$)", "discounts",
						"total_discounts", total, models.FormatCurrency, in.Colors.Color),
					rankingBar(KeyAvgDiscounts, "Média de Desconto por Vendedor (%)", "discounts",
						"avg_discounts", avg, models.FormatPercent, in.Colors.Color),
				}, nil
			},
		},
		{
			Group:    "sales_channels",
			Keys:     []string{KeyChannels},
			Required: []string{models.ColChannel},
			Build: func(in *Input) ([]Built, error) {
				r, err := metrics.Aggregate(in.Views.All, metrics.AggregateSpec{
					GroupKey: models.ColChannel, Op: models.OpCount,
				})
				if err != nil {
					return nil, err
				}
				return []Built{pie(KeyChannels, "Vendas por Canal", "sales_channels", "channels", r)}, nil
			},
		},
		{
			Group:    "branch_sales",
			Keys:     []string{KeyBranches},
			Required: []string{models.ColBranch, models.ColChannel, models.ColNetValue},
			Build: func(in *Input) ([]Built, error) {
				if in.Views.Physical.Len() == 0 {
					return []Built{skipped(KeyBranches, models.SkipNoData, "no completed physical-channel sales")}, nil
				}
				r, err := metrics.Aggregate(in.Views.Physical, metrics.AggregateSpec{
					GroupKey: models.ColBranch, MetricKey: models.ColNetValue, Op: models.OpSum,
				})
				if err != nil {
					return nil, err
				}
				return []Built{rankingBar(KeyBranches, "Faturamento por Filial (Vendas Físicas)", "branch_sales",
					"branches", r, models.FormatCurrency, nil)}, nil
			},
		},
		{
			Group:    "sales_status",
			Keys:     []string{KeyStatus, KeyReturns},
			Required: []string{models.ColStatus, models.ColSalesperson},
			Build: func(in *Input) ([]Built, error) {
				status, err := metrics.Aggregate(in.Views.All, metrics.AggregateSpec{
					GroupKey: models.ColStatus, Op: models.OpCount,
				})
				if err != nil {
					return nil, err
				}
				out := []Built{rankingBar(KeyStatus, "Status Geral das Vendas", "sales_status", "status",
					status, models.FormatCount, nil)}

				if in.Views.Returned.Len() == 0 {
					return append(out, skipped(KeyReturns, models.SkipNoData, "no returned sales")), nil
				}
				returns, err := metrics.Aggregate(in.Views.Returned, metrics.AggregateSpec{
					GroupKey: models.ColSalesperson, Op: models.OpCount,
				})
				if err != nil {
					return nil, err
				}
				return append(out, rankingBar(KeyReturns, "Devoluções por Vendedor", "sales_status",
					"returns_by_salesperson", returns, models.FormatCount, in.Colors.Color)), nil
			},
		},
		{
			Group:    "profit",
			Keys:     []string{KeyProfitBySalesperson},
			Required: []string{models.ColSalesperson, models.ColProfit},
			Build: func(in *Input) ([]Built, error) {
				r, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColSalesperson, MetricKey: models.ColProfit, Op: models.OpSum,
				})
				if err != nil {
					return nil, err
				}
				return []Built{rankingBar(KeyProfitBySalesperson, "Lucro Total por Vendedor", "profit",
					"profit_by_salesperson", r, models.FormatCurrency, in.Colors.Color)}, nil
			},
		},
		{
			Group:    "products",
			Keys:     []string{KeyTopProducts, KeyTopCategories},
			Required: []string{models.ColProduct, models.ColCategory, models.ColNetValue},
			Build: func(in *Input) ([]Built, error) {
				products, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColProduct, MetricKey: models.ColNetValue, Op: models.OpSum, TopN: in.TopN,
				})
				if err != nil {
					return nil, err
				}
				categories, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColCategory, MetricKey: models.ColNetValue, Op: models.OpSum, TopN: in.TopN,
				})
				if err != nil {
					return nil, err
				}
				return []Built{
					rankingBar(KeyTopProducts, fmt.Sprintf("Top %d Produtos por Faturamento", in.TopN), "products",
						"top_products", products, models.FormatCurrency, nil),
					rankingBar(KeyTopCategories, fmt.Sprintf("Top %d Categorias por Faturamento", in.TopN), "products",
						"top_categories", categories, models.FormatCurrency, nil),
				}, nil
			},
		},
		{
			Group:    "revenue_vs_profit",
			Keys:     []string{KeyRevenueVsProfit},
			Required: []string{models.ColSalesperson, models.ColNetValue, models.ColProfit},
			Build: func(in *Input) ([]Built, error) {
				revenue, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: models.OpSum,
				})
				if err != nil {
					return nil, err
				}
				profit, err := metrics.Aggregate(in.Views.Completed, metrics.AggregateSpec{
					GroupKey: models.ColSalesperson, MetricKey: models.ColProfit, Op: models.OpSum,
				})
				if err != nil {
					return nil, err
				}
				return []Built{revenueVsProfit(revenue, profit)}, nil
			},
		},
		{
			Group: "economic",
			Keys:  []string{KeyIPCA, KeySELIC},
			Build: func(in *Input) ([]Built, error) {
				var ipca, selic *models.IndicatorSeries
				var causes map[string]string
				if in.Economic != nil {
					ipca, selic, causes = in.Economic.IPCA, in.Economic.SELIC, in.Economic.Errors
				}
				return []Built{
					indicatorLine(KeyIPCA, "IPCA - Variação Mensal (%)", models.IndicatorIPCA, ipca, colorIPCA, causes),
					indicatorLine(KeySELIC, "Taxa SELIC - Média Mensal (% a.a.)", models.IndicatorSELIC, selic, colorSELIC, causes),
				}, nil
			},
		},
	}
}

// rankingBar turns a ranking into a bar chart. colorOf may be nil, in which
// case bars take palette colours by position.
func rankingBar(key, title, category, stem string, r models.Ranking, format models.ValueFormat, colorOf func(string) models.Color) Built {
	if r.Len() == 0 {
		return skipped(key, models.SkipNoData, "no rows to aggregate")
	}
	series := models.ChartSeries{Name: title}
	for i, e := range r.Entries {
		c := paletteColor(i)
		if colorOf != nil {
			c = colorOf(e.Entity)
		}
		series.Points = append(series.Points, models.ChartPoint{
			Label: e.Entity,
			Value: e.Value.InexactFloat64(),
			Color: c,
		})
	}
	return built(models.ChartSpec{
		Key:      key,
		Title:    title,
		Kind:     models.ChartBar,
		Category: category,
		Stem:     stem,
		Format:   format,
		Series:   []models.ChartSeries{series},
	})
}

func pie(key, title, category, stem string, r models.Ranking) Built {
	if r.Len() == 0 || r.Total().IsZero() {
		return skipped(key, models.SkipNoData, "no rows to count")
	}
	series := models.ChartSeries{Name: title}
	for i, e := range r.Entries {
		series.Points = append(series.Points, models.ChartPoint{
			Label: e.Entity,
			Value: e.Value.InexactFloat64(),
			Color: paletteColor(i),
		})
	}
	return built(models.ChartSpec{
		Key:      key,
		Title:    title,
		Kind:     models.ChartPie,
		Category: category,
		Stem:     stem,
		Format:   models.FormatCount,
		Series:   []models.ChartSeries{series},
	})
}

func revenueVsProfit(revenue, profit models.Ranking) Built {
	if revenue.Len() == 0 {
		return skipped(KeyRevenueVsProfit, models.SkipNoData, "no completed sales")
	}
	rev := models.ChartSeries{Name: "Faturamento", Color: colorRevenue}
	prof := models.ChartSeries{Name: "Lucro", Color: colorProfit}
	for _, e := range revenue.Entries {
		p, _ := profit.Lookup(e.Entity)
		rev.Points = append(rev.Points, models.ChartPoint{Label: e.Entity, Value: e.Value.InexactFloat64(), Color: colorRevenue})
		prof.Points = append(prof.Points, models.ChartPoint{Label: e.Entity, Value: p.InexactFloat64(), Color: colorProfit})
	}
	return built(models.ChartSpec{
		Key:      KeyRevenueVsProfit,
		Title:    "Faturamento vs. Lucro por Vendedor",
		Kind:     models.ChartPairedBar,
		Category: "profit",
		Stem:     "revenue_vs_profit",
		Format:   models.FormatCurrency,
		Series:   []models.ChartSeries{rev, prof},
	})
}

func indicatorLine(key, title, stem string, s *models.IndicatorSeries, color models.Color, causes map[string]string) Built {
	if s == nil {
		detail := "indicator unavailable"
		if cause, ok := causes[stem]; ok {
			detail = cause
		}
		return skipped(key, models.SkipSourceUnavailable, detail)
	}
	if len(s.Points) < 2 {
		return skipped(key, models.SkipNoData, "fewer than two observations")
	}
	series := models.ChartSeries{Name: title, Color: color}
	for _, p := range s.Points {
		series.Times = append(series.Times, p.Date)
		series.Points = append(series.Points, models.ChartPoint{Label: p.Date.Format("01/2006"), Value: p.Value, Color: color})
	}
	return built(models.ChartSpec{
		Key:      key,
		Title:    title,
		Kind:     models.ChartLine,
		Category: "economic_context",
		Stem:     stem,
		Format:   models.FormatDecimal,
		Series:   []models.ChartSeries{series},
	})
}

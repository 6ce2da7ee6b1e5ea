package insights

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// ErrInsufficientData is returned when an aggregate the summary needs is
// missing. The pipeline halts instead of asking the model to guess.
var ErrInsufficientData = errors.New("insufficient data for summary")

// FailurePrefix starts the diagnostic text returned with ErrInsufficientData.
const FailurePrefix = "Não foi possível gerar o resumo em texto."

// Summarizer renders an AggregateSet as the plain-text block sent to the
// language model.
type Summarizer struct {
	topN     int
	economic *models.EconomicContext
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithTopN sets the number of entries listed per ranking (default 5).
func WithTopN(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithEconomicContext appends the latest indicator values to the summary.
func WithEconomicContext(ec *models.EconomicContext) Option {
	return func(s *Summarizer) {
		s.economic = ec
	}
}

// NewSummarizer creates a summarizer.
func NewSummarizer(opts ...Option) *Summarizer {
	s := &Summarizer{topN: 5}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize renders the default summary.
func Summarize(set *models.AggregateSet, baselines models.TeamBaselines) (string, error) {
	return NewSummarizer().Summarize(set, baselines)
}

type missingError struct {
	name string
}

func (e *missingError) Error() string {
	return fmt.Sprintf("%v: aggregate %q is missing", ErrInsufficientData, e.name)
}

func (e *missingError) Unwrap() error {
	return ErrInsufficientData
}

// summaryWriter accumulates sections and remembers the first missing
// aggregate so section code stays linear.
type summaryWriter struct {
	set     *models.AggregateSet
	b       strings.Builder
	missing string
}

func (w *summaryWriter) scalar(name string) decimal.Decimal {
	v, ok := w.set.Scalar(name)
	if !ok && w.missing == "" {
		w.missing = name
	}
	return v
}

func (w *summaryWriter) ranking(name string) models.Ranking {
	r, ok := w.set.Ranking(name)
	if !ok && w.missing == "" {
		w.missing = name
	}
	return r
}

func (w *summaryWriter) section(title string) {
	w.b.WriteString("\n--- ")
	w.b.WriteString(title)
	w.b.WriteString(" ---\n")
}

func (w *summaryWriter) line(format string, args ...interface{}) {
	w.b.WriteString(fmt.Sprintf(format, args...))
	w.b.WriteString("\n")
}

// Summarize renders the fixed-order sections. When an aggregate is missing
// it returns diagnostic text and an error wrapping ErrInsufficientData.
func (s *Summarizer) Summarize(set *models.AggregateSet, baselines models.TeamBaselines) (string, error) {
	if set == nil {
		err := &missingError{name: "aggregate set"}
		return FailurePrefix + " Nenhum agregado disponível.", err
	}

	w := &summaryWriter{set: set}
	w.b.WriteString("RESUMO DOS DADOS QUANTITATIVOS PARA ANÁLISE:\n")

	s.teamAverages(w, baselines)
	s.totals(w)
	s.rankingSection(w, "Lucro por Vendedor", models.AggProfitBySalesperson, 0, FormatCurrency)
	s.rankingSection(w, fmt.Sprintf("Top %d Tipos de Cliente por Faturamento", s.topN), models.AggRevenueByCustomerType, s.topN, FormatCurrency)
	s.rankingSection(w, fmt.Sprintf("Top %d Produtos por Faturamento", s.topN), models.AggRevenueByProduct, s.topN, FormatCurrency)
	s.rankingSection(w, fmt.Sprintf("Top %d Categorias por Faturamento", s.topN), models.AggRevenueByCategory, s.topN, FormatCurrency)
	s.leaders(w)
	s.shareSection(w, "Distribuição dos Métodos de Pagamento (%)", models.AggPaymentMethodCount)
	s.rankingSection(w, "Vendedores por Total de Desconto (R$)", models.AggDiscountValueBySalesperson, 0, FormatCurrency)
	s.rankingSection(w, "Vendedores por Média de Desconto (%)", models.AggAvgDiscountBySalesperson, 0, func(v decimal.Decimal) string {
		return FormatPercent(v, 1)
	})
	s.returns(w)
	s.status(w)

	// supplemental sections follow the fixed ones
	s.shareSection(w, "Canais de Venda (%)", models.AggChannelCount)
	s.individuals(w, baselines)
	s.economicSection(w)

	if w.missing != "" {
		return FailurePrefix + " Agregado ausente: " + w.missing, &missingError{name: w.missing}
	}
	return strings.TrimSpace(w.b.String()), nil
}

func (s *Summarizer) teamAverages(w *summaryWriter, b models.TeamBaselines) {
	w.section("Métricas Gerais da Equipe (para comparação)")
	w.line("Faturamento médio por vendedor: %s", FormatCurrency(b.AvgRevenue))
	w.line("Lucro médio por vendedor: %s", FormatCurrency(b.AvgProfit))
	w.line("Média de desconto geral da equipe: %s", FormatPercent(b.AvgDiscountRate, 2))
	w.line("Média de devoluções por vendedor: %s", FormatNumber(b.AvgReturns.InexactFloat64(), 1))
}

func (s *Summarizer) totals(w *summaryWriter) {
	profit := w.scalar(models.AggTotalProfit)
	revenue := w.scalar(models.AggTotalNetRevenue)
	gross := w.scalar(models.AggTotalGrossRevenue)
	discount := w.scalar(models.AggTotalDiscountValue)
	margin := w.scalar(models.AggProfitMargin)
	total := w.scalar(models.AggTotalSales)
	completed := w.scalar(models.AggCompletedSales)

	w.section("Lucro Total")
	w.line("Lucro Líquido Total: %s", FormatCurrency(profit))
	w.line("Faturamento Líquido Total: %s", FormatCurrency(revenue))
	w.line("Faturamento Bruto Total: %s", FormatCurrency(gross))
	w.line("Total de Descontos Concedidos: %s", FormatCurrency(discount))
	w.line("Margem de Lucro: %s", FormatPercent(margin, 1))
	w.line("Vendas Concluídas: %s de %s", FormatCount(completed), FormatCount(total))
}

func (s *Summarizer) rankingSection(w *summaryWriter, title, name string, topN int, format func(decimal.Decimal) string) {
	r := w.ranking(name).Top(topN)
	w.section(title)
	if r.Len() == 0 {
		w.line("Sem dados.")
		return
	}
	for _, e := range r.Entries {
		w.line("%s: %s", e.Entity, format(e.Value))
	}
}

func (s *Summarizer) shareSection(w *summaryWriter, title, name string) {
	r := w.ranking(name)
	total := r.Total()
	w.section(title)
	if r.Len() == 0 || total.IsZero() {
		w.line("Sem dados.")
		return
	}
	for _, e := range r.Entries {
		w.line("%s: %s", e.Entity, FormatPercent(e.Value.Div(total), 1))
	}
}

func (s *Summarizer) leaders(w *summaryWriter) {
	w.section("Produto Mais Vendido por Categoria")
	leaders := w.set.Leaders()
	if len(leaders) == 0 {
		w.line("Sem dados.")
		return
	}
	for _, l := range leaders {
		w.line("%s: %s (%s)", l.Category, l.Product, FormatCurrency(l.Revenue))
	}
}

func (s *Summarizer) returns(w *summaryWriter) {
	r := w.ranking(models.AggReturnsBySalesperson)
	if r.Len() == 0 {
		return
	}
	w.section("Vendedores com Mais Devoluções")
	for _, e := range r.Entries {
		w.line("%s: %s devoluções", e.Entity, FormatCount(e.Value))
	}
}

func (s *Summarizer) status(w *summaryWriter) {
	r := w.ranking(models.AggStatusDistribution)
	rate := w.scalar(models.AggReturnRate)
	w.section("Status Geral das Vendas")
	for _, e := range r.Entries {
		w.line("%s: %s", e.Entity, FormatCount(e.Value))
	}
	w.line("Taxa de devolução: %s", FormatPercent(rate, 1))
}

func (s *Summarizer) individuals(w *summaryWriter, b models.TeamBaselines) {
	profiles := w.set.Profiles()
	if len(profiles) == 0 {
		return
	}
	w.section("Desempenho Individual vs. Média da Equipe")
	for _, p := range profiles {
		w.line("%s: faturamento %s (%s da média), lucro %s (%s da média), desconto médio %s, vendas %d, devoluções %d",
			p.Name,
			FormatCurrency(p.Revenue), relative(p.Revenue, b.AvgRevenue),
			FormatCurrency(p.Profit), relative(p.Profit, b.AvgProfit),
			FormatPercent(p.AvgDiscount, 1),
			p.Sales, p.Returns,
		)
	}
}

func (s *Summarizer) economicSection(w *summaryWriter) {
	if s.economic == nil {
		return
	}
	var lines []string
	if p, ok := s.economic.IPCA.Latest(); ok {
		lines = append(lines, fmt.Sprintf("IPCA (variação mensal, %s): %s%%", p.Date.Format("01/2006"), FormatNumber(p.Value, 2)))
	}
	if p, ok := s.economic.SELIC.Latest(); ok {
		lines = append(lines, fmt.Sprintf("SELIC (média mensal, %s): %s%%", p.Date.Format("01/2006"), FormatNumber(p.Value, 2)))
	}
	if len(lines) == 0 {
		return
	}
	w.section("Indicadores Econômicos (Banco Central do Brasil)")
	for _, l := range lines {
		w.line("%s", l)
	}
}

// relative renders v as a percentage of the baseline, "n/d" without one.
func relative(v, baseline decimal.Decimal) string {
	if baseline.IsZero() {
		return "n/d"
	}
	return FormatPercent(v.Div(baseline), 0)
}

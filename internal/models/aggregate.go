package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AggregateOp is the reduction applied to each group.
type AggregateOp string

const (
	OpSum   AggregateOp = "sum"
	OpMean  AggregateOp = "mean"
	OpCount AggregateOp = "count"
)

// Valid reports whether the op is supported.
func (o AggregateOp) Valid() bool {
	return o == OpSum || o == OpMean || o == OpCount
}

// RankEntry is one group of a ranking.
type RankEntry struct {
	Entity string
	Value  decimal.Decimal
	Count  int
}

// Ranking is an ordered list of entity/value pairs, sorted descending by
// value with ties kept in first-occurrence order.
type Ranking struct {
	GroupKey  string
	MetricKey string
	Op        AggregateOp
	Entries   []RankEntry
}

// Sorted returns a copy ordered descending by value. Stable, so calling it on
// an already sorted ranking returns the same order.
func (r Ranking) Sorted() Ranking {
	out := r
	out.Entries = make([]RankEntry, len(r.Entries))
	copy(out.Entries, r.Entries)
	sort.SliceStable(out.Entries, func(i, j int) bool {
		return out.Entries[i].Value.GreaterThan(out.Entries[j].Value)
	})
	return out
}

// Top returns a copy holding at most n entries; n <= 0 keeps all.
func (r Ranking) Top(n int) Ranking {
	out := r
	if n <= 0 || n >= len(r.Entries) {
		n = len(r.Entries)
	}
	out.Entries = make([]RankEntry, n)
	copy(out.Entries, r.Entries[:n])
	return out
}

// Len returns the number of entries.
func (r Ranking) Len() int {
	return len(r.Entries)
}

// Total sums the entry values.
func (r Ranking) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.Entries {
		total = total.Add(e.Value)
	}
	return total
}

// Lookup returns the value of an entity.
func (r Ranking) Lookup(entity string) (decimal.Decimal, bool) {
	for _, e := range r.Entries {
		if e.Entity == entity {
			return e.Value, true
		}
	}
	return decimal.Zero, false
}

// Labels returns the entity names in ranking order.
func (r Ranking) Labels() []string {
	labels := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		labels[i] = e.Entity
	}
	return labels
}

// CategoryLeader is the best selling product of one category.
type CategoryLeader struct {
	Category string
	Product  string
	Revenue  decimal.Decimal
}

// SalespersonProfile gathers the per-salesperson figures used in comparisons.
type SalespersonProfile struct {
	Name        string
	Revenue     decimal.Decimal
	Profit      decimal.Decimal
	AvgDiscount decimal.Decimal
	Sales       int
	Returns     int
}

// TeamBaselines are the per-salesperson team means.
type TeamBaselines struct {
	AvgRevenue      decimal.Decimal
	AvgProfit       decimal.Decimal
	AvgDiscountRate decimal.Decimal
	AvgReturns      decimal.Decimal
	Salespeople     int
}

// Named scalars of an AggregateSet.
const (
	AggTotalNetRevenue    = "total_net_revenue"
	AggTotalGrossRevenue  = "total_gross_revenue"
	AggTotalProfit        = "total_profit"
	AggTotalCost          = "total_cost"
	AggTotalDiscountValue = "total_discount_value"
	AggProfitMargin       = "profit_margin"
	AggAvgDiscountRate    = "avg_discount_rate"
	AggTotalSales         = "total_sales"
	AggCompletedSales     = "completed_sales"
	AggReturnedSales      = "returned_sales"
	AggReturnRate         = "return_rate"
)

// Named rankings of an AggregateSet.
const (
	AggRevenueBySalesperson       = "revenue_by_salesperson"
	AggProfitBySalesperson        = "profit_by_salesperson"
	AggRevenueByCustomerType      = "revenue_by_customer_type"
	AggAvgTicketByCustomerType    = "avg_ticket_by_customer_type"
	AggRevenueByProduct           = "revenue_by_product"
	AggProfitByProduct            = "profit_by_product"
	AggRevenueByCategory          = "revenue_by_category"
	AggDiscountValueBySalesperson = "discount_value_by_salesperson"
	AggAvgDiscountBySalesperson   = "avg_discount_by_salesperson"
	AggRevenueByBranch            = "revenue_by_branch"
	AggPaymentMethodCount         = "payment_method_count"
	AggChannelCount               = "channel_count"
	AggStatusDistribution         = "status_distribution"
	AggSalesCountBySalesperson    = "sales_count_by_salesperson"
	AggReturnsBySalesperson       = "returns_by_salesperson"
)

// AggregateSet holds every named aggregate computed for one run. It is built
// once and only read afterwards.
type AggregateSet struct {
	scalars  map[string]decimal.Decimal
	rankings map[string]Ranking
	leaders  []CategoryLeader
	profiles []SalespersonProfile
}

// NewAggregateSet returns an empty set ready for the builder.
func NewAggregateSet() *AggregateSet {
	return &AggregateSet{
		scalars:  make(map[string]decimal.Decimal),
		rankings: make(map[string]Ranking),
	}
}

// SetScalar records a named scalar.
func (s *AggregateSet) SetScalar(name string, v decimal.Decimal) {
	s.scalars[name] = v
}

// SetRanking records a named ranking.
func (s *AggregateSet) SetRanking(name string, r Ranking) {
	s.rankings[name] = r
}

// SetLeaders records the per-category leaders.
func (s *AggregateSet) SetLeaders(l []CategoryLeader) {
	s.leaders = append([]CategoryLeader(nil), l...)
}

// SetProfiles records the per-salesperson profiles.
func (s *AggregateSet) SetProfiles(p []SalespersonProfile) {
	s.profiles = append([]SalespersonProfile(nil), p...)
}

// Scalar returns a named scalar.
func (s *AggregateSet) Scalar(name string) (decimal.Decimal, bool) {
	v, ok := s.scalars[name]
	return v, ok
}

// Ranking returns a named ranking.
func (s *AggregateSet) Ranking(name string) (Ranking, bool) {
	r, ok := s.rankings[name]
	return r, ok
}

// Leaders returns the per-category leaders in category order.
func (s *AggregateSet) Leaders() []CategoryLeader {
	return append([]CategoryLeader(nil), s.leaders...)
}

// Profiles returns the salesperson profiles in first-occurrence order.
func (s *AggregateSet) Profiles() []SalespersonProfile {
	return append([]SalespersonProfile(nil), s.profiles...)
}

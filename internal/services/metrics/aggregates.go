package metrics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// Views splits a table into the record subsets the business rules need.
type Views struct {
	All       *models.Table
	Completed *models.Table
	Returned  *models.Table
	Physical  *models.Table // completed sales of the physical channel
}

// NewViews builds the filtered views of t.
func NewViews(t *models.Table, rules models.StatusRules) Views {
	completed := t.Filter(func(r models.DerivedRecord) bool { return r.Status == rules.Completed })
	return Views{
		All:       t,
		Completed: completed,
		Returned:  t.Filter(func(r models.DerivedRecord) bool { return r.Status == rules.Returned }),
		Physical:  completed.Filter(func(r models.DerivedRecord) bool { return r.Channel == rules.Physical }),
	}
}

type rankingRule struct {
	name string
	view func(Views) *models.Table
	spec AggregateSpec
}

func completedView(v Views) *models.Table { return v.Completed }
func allView(v Views) *models.Table { return v.All }
func returnedView(v Views) *models.Table { return v.Returned }
func physicalView(v Views) *models.Table { return v.Physical }

// rankingRules lists every named ranking. Revenue, profit and discount
// figures only count completed sales; counts of status, channel and payment
// method use all records.
var rankingRules = []rankingRule{
	{models.AggRevenueBySalesperson, completedView, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: models.OpSum}},
	{models.AggProfitBySalesperson, completedView, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColProfit, Op: models.OpSum}},
	{models.AggRevenueByCustomerType, completedView, AggregateSpec{GroupKey: models.ColCustomerType, MetricKey: models.ColNetValue, Op: models.OpSum}},
	{models.AggAvgTicketByCustomerType, completedView, AggregateSpec{GroupKey: models.ColCustomerType, MetricKey: models.ColNetValue, Op: models.OpMean}},
	{models.AggRevenueByProduct, completedView, AggregateSpec{GroupKey: models.ColProduct, MetricKey: models.ColNetValue, Op: models.OpSum}},
	{models.AggProfitByProduct, completedView, AggregateSpec{GroupKey: models.ColProduct, MetricKey: models.ColProfit, Op: models.OpSum}},
	{models.AggRevenueByCategory, completedView, AggregateSpec{GroupKey: models.ColCategory, MetricKey: models.ColNetValue, Op: models.OpSum}},
	{models.AggDiscountValueBySalesperson, completedView, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColDiscountValue, Op: models.OpSum}},
	{models.AggAvgDiscountBySalesperson, completedView, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColDiscount, Op: models.OpMean}},
	{models.AggRevenueByBranch, physicalView, AggregateSpec{GroupKey: models.ColBranch, MetricKey: models.ColNetValue, Op: models.OpSum}},
	{models.AggPaymentMethodCount, allView, AggregateSpec{GroupKey: models.ColPaymentMethod, Op: models.OpCount}},
	{models.AggChannelCount, allView, AggregateSpec{GroupKey: models.ColChannel, Op: models.OpCount}},
	{models.AggStatusDistribution, allView, AggregateSpec{GroupKey: models.ColStatus, Op: models.OpCount}},
	{models.AggSalesCountBySalesperson, allView, AggregateSpec{GroupKey: models.ColSalesperson, Op: models.OpCount}},
	{models.AggReturnsBySalesperson, returnedView, AggregateSpec{GroupKey: models.ColSalesperson, Op: models.OpCount}},
}

// BuildAggregateSet computes every named aggregate of the report.
func BuildAggregateSet(t *models.Table, rules models.StatusRules) (*models.AggregateSet, error) {
	views := NewViews(t, rules)
	set := models.NewAggregateSet()

	scalars := []struct {
		name   string
		view   *models.Table
		metric string
	}{
		{models.AggTotalNetRevenue, views.Completed, models.ColNetValue},
		{models.AggTotalGrossRevenue, views.Completed, models.ColGrossValue},
		{models.AggTotalProfit, views.Completed, models.ColProfit},
		{models.AggTotalCost, views.Completed, models.ColTotalCost},
		{models.AggTotalDiscountValue, views.Completed, models.ColDiscountValue},
	}
	for _, s := range scalars {
		v, err := Sum(s.view, s.metric)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		set.SetScalar(s.name, v)
	}

	avgDiscount, err := Mean(views.Completed, models.ColDiscount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.AggAvgDiscountRate, err)
	}
	set.SetScalar(models.AggAvgDiscountRate, avgDiscount)

	revenue, _ := set.Scalar(models.AggTotalNetRevenue)
	profit, _ := set.Scalar(models.AggTotalProfit)
	set.SetScalar(models.AggProfitMargin, Ratio(profit, revenue))

	total := decimal.NewFromInt(int64(views.All.Len()))
	returned := decimal.NewFromInt(int64(views.Returned.Len()))
	set.SetScalar(models.AggTotalSales, total)
	set.SetScalar(models.AggCompletedSales, decimal.NewFromInt(int64(views.Completed.Len())))
	set.SetScalar(models.AggReturnedSales, returned)
	set.SetScalar(models.AggReturnRate, Ratio(returned, total))

	for _, rule := range rankingRules {
		ranking, err := Aggregate(rule.view(views), rule.spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rule.name, err)
		}
		set.SetRanking(rule.name, ranking)
	}

	leaders, err := categoryLeaders(views.Completed, set)
	if err != nil {
		return nil, err
	}
	set.SetLeaders(leaders)
	set.SetProfiles(salespersonProfiles(views, set))

	return set, nil
}

// categoryLeaders picks the highest revenue product of each category, in
// category revenue order.
func categoryLeaders(completed *models.Table, set *models.AggregateSet) ([]models.CategoryLeader, error) {
	categories, _ := set.Ranking(models.AggRevenueByCategory)

	var leaders []models.CategoryLeader
	for _, c := range categories.Entries {
		category := c.Entity
		inCategory := completed.Filter(func(r models.DerivedRecord) bool { return r.Category == category })
		products, err := Aggregate(inCategory, AggregateSpec{
			GroupKey:  models.ColProduct,
			MetricKey: models.ColNetValue,
			Op:        models.OpSum,
			TopN:      1,
		})
		if err != nil {
			return nil, fmt.Errorf("category leaders: %w", err)
		}
		if products.Len() == 0 {
			continue
		}
		leaders = append(leaders, models.CategoryLeader{
			Category: category,
			Product:  products.Entries[0].Entity,
			Revenue:  products.Entries[0].Value,
		})
	}
	return leaders, nil
}

// salespersonProfiles lists every salesperson in first-occurrence order.
func salespersonProfiles(views Views, set *models.AggregateSet) []models.SalespersonProfile {
	revenue, _ := set.Ranking(models.AggRevenueBySalesperson)
	profit, _ := set.Ranking(models.AggProfitBySalesperson)
	discount, _ := set.Ranking(models.AggAvgDiscountBySalesperson)
	sales, _ := set.Ranking(models.AggSalesCountBySalesperson)
	returns, _ := set.Ranking(models.AggReturnsBySalesperson)

	var profiles []models.SalespersonProfile
	for _, name := range Salespeople(views.All) {
		p := models.SalespersonProfile{Name: name}
		p.Revenue, _ = revenue.Lookup(name)
		p.Profit, _ = profit.Lookup(name)
		p.AvgDiscount, _ = discount.Lookup(name)
		if v, ok := sales.Lookup(name); ok {
			p.Sales = int(v.IntPart())
		}
		if v, ok := returns.Lookup(name); ok {
			p.Returns = int(v.IntPart())
		}
		profiles = append(profiles, p)
	}
	return profiles
}

// Salespeople returns the distinct salesperson names in first-occurrence order.
func Salespeople(t *models.Table) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range t.Records() {
		if seen[r.Salesperson] {
			continue
		}
		seen[r.Salesperson] = true
		names = append(names, r.Salesperson)
	}
	return names
}

// ComputeBaselines derives the per-salesperson team means used to compare
// each salesperson. Every salesperson counts, with zero for the metrics they
// have no rows for. AvgDiscountRate is the row-level mean of completed sales.
func ComputeBaselines(set *models.AggregateSet) models.TeamBaselines {
	var b models.TeamBaselines
	b.AvgDiscountRate, _ = set.Scalar(models.AggAvgDiscountRate)

	profiles := set.Profiles()
	b.Salespeople = len(profiles)
	if b.Salespeople == 0 {
		return b
	}

	revenue, profit, returns := decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range profiles {
		revenue = revenue.Add(p.Revenue)
		profit = profit.Add(p.Profit)
		returns = returns.Add(decimal.NewFromInt(int64(p.Returns)))
	}
	n := decimal.NewFromInt(int64(b.Salespeople))
	b.AvgRevenue = revenue.Div(n)
	b.AvgProfit = profit.Div(n)
	b.AvgReturns = returns.Div(n)
	return b
}

package metrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(person, product, category, status string, price, cost, qty, discount string) models.SalesRecord {
	return models.SalesRecord{
		Salesperson:      person,
		Product:          product,
		Category:         category,
		Status:           status,
		CustomerType:     "Varejo",
		Branch:           "Centro",
		Channel:          "Física",
		PaymentMethod:    "Pix",
		UnitPrice:        dec(price),
		UnitCost:         dec(cost),
		Quantity:         dec(qty),
		DiscountFraction: dec(discount),
	}
}

func inputColumns() []string {
	return append(append([]string{}, models.RequiredColumns...), models.ColSaleID)
}

func TestDeriveRecord_Identities(t *testing.T) {
	tests := []struct {
		price, cost, qty, discount string
	}{
		{"100", "40", "1", "0.1"},
		{"19.99", "7.35", "3", "0.15"},
		{"0.01", "0.02", "7", "1"},
		{"1234.56", "1000", "12", "0"},
		{"33.33", "11.11", "3", "0.333"},
	}

	for _, tt := range tests {
		r := DeriveRecord(sale("Ana", "P", "C", "Concluída", tt.price, tt.cost, tt.qty, tt.discount))

		gross := dec(tt.price).Mul(dec(tt.qty))
		assert.True(t, gross.Equal(r.GrossValue))
		assert.True(t, r.NetValue.Equal(r.GrossValue.Sub(r.GrossValue.Mul(dec(tt.discount)))))
		assert.True(t, r.Profit.Equal(r.NetValue.Sub(dec(tt.cost).Mul(dec(tt.qty)))))
		assert.True(t, r.DiscountValue.Add(r.NetValue).Equal(r.GrossValue))
	}
}

func TestDerive_AddsDerivedColumns(t *testing.T) {
	table := Derive([]models.SalesRecord{sale("Ana", "P", "C", "Concluída", "10", "5", "1", "0")}, inputColumns())

	for _, c := range models.DerivedColumns {
		assert.True(t, table.HasColumn(c), c)
	}
	assert.True(t, table.HasColumn(models.ColSaleID))
	assert.False(t, table.HasColumn(models.ColSKU))
	assert.Equal(t, 1, table.Len())
}

func TestAggregate_SortsWithStableTies(t *testing.T) {
	table := Derive([]models.SalesRecord{
		sale("Bia", "P", "C", "Concluída", "50", "0", "1", "0"),
		sale("Ana", "P", "C", "Concluída", "100", "0", "1", "0"),
		sale("Caio", "P", "C", "Concluída", "50", "0", "1", "0"),
		sale("Bia", "P", "C", "Concluída", "50", "0", "1", "0"),
	}, inputColumns())

	r, err := Aggregate(table, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: models.OpSum})
	require.NoError(t, err)

	// Bia and Ana tie at 100; Bia was seen first
	assert.Equal(t, []string{"Bia", "Ana", "Caio"}, r.Labels())
	assert.True(t, dec("100").Equal(r.Entries[0].Value))
	assert.Equal(t, 2, r.Entries[0].Count)

	top, err := Aggregate(table, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: models.OpSum, TopN: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bia", "Ana"}, top.Labels())
}

func TestAggregate_MeanAndCount(t *testing.T) {
	table := Derive([]models.SalesRecord{
		sale("Ana", "P", "C", "Concluída", "10", "0", "1", "0.1"),
		sale("Ana", "P", "C", "Concluída", "10", "0", "1", "0.3"),
		sale("Bia", "P", "C", "Devolvida", "10", "0", "1", "0"),
	}, inputColumns())

	mean, err := Aggregate(table, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColDiscount, Op: models.OpMean})
	require.NoError(t, err)
	v, ok := mean.Lookup("Ana")
	require.True(t, ok)
	assert.True(t, dec("0.2").Equal(v))

	count, err := Aggregate(table, AggregateSpec{GroupKey: models.ColStatus, Op: models.OpCount})
	require.NoError(t, err)
	assert.Equal(t, []string{"Concluída", "Devolvida"}, count.Labels())
	assert.True(t, dec("2").Equal(count.Entries[0].Value))
}

func TestAggregate_UnknownKeys(t *testing.T) {
	table := Derive([]models.SalesRecord{sale("Ana", "P", "C", "Concluída", "10", "0", "1", "0")}, inputColumns())

	_, err := Aggregate(table, AggregateSpec{GroupKey: "Cor", MetricKey: models.ColNetValue, Op: models.OpSum})
	assert.ErrorIs(t, err, ErrUnknownGroupKey)

	// known column the input did not carry
	_, err = Aggregate(table, AggregateSpec{GroupKey: models.ColSKU, Op: models.OpCount})
	assert.ErrorIs(t, err, ErrUnknownGroupKey)

	_, err = Aggregate(table, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: "Peso", Op: models.OpSum})
	assert.ErrorIs(t, err, ErrUnknownMetricKey)

	_, err = Aggregate(table.WithoutColumn(models.ColNetValue), AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: models.OpSum})
	assert.ErrorIs(t, err, ErrUnknownMetricKey)

	_, err = Aggregate(table, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: "median"})
	assert.ErrorIs(t, err, ErrUnknownOp)
}

func TestAggregate_BlankGroupValue(t *testing.T) {
	blank := sale("", "Mesa", "Móveis", "Concluída", "20", "0", "1", "0")
	blank.Row = 2
	table := Derive([]models.SalesRecord{
		sale("Ana", "Cadeira", "Móveis", "Concluída", "10", "0", "1", "0"),
		blank,
	}, inputColumns())

	_, err := Aggregate(table, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: models.OpSum})
	require.ErrorIs(t, err, ErrUnknownGroupKey)
	assert.Contains(t, err.Error(), "row 2")

	_, err = BuildAggregateSet(table, models.DefaultStatusRules())
	assert.ErrorIs(t, err, ErrUnknownGroupKey)

	// other groupings of the same rows are unaffected
	r, err := Aggregate(table, AggregateSpec{GroupKey: models.ColCategory, Op: models.OpCount})
	require.NoError(t, err)
	assert.Equal(t, []string{"Móveis"}, r.Labels())
}

func TestAggregate_Idempotent(t *testing.T) {
	table := Derive([]models.SalesRecord{
		sale("Caio", "P", "C", "Concluída", "30", "0", "1", "0"),
		sale("Ana", "P", "C", "Concluída", "10", "0", "1", "0"),
		sale("Bia", "P", "C", "Concluída", "30", "0", "1", "0"),
		sale("Ana", "P", "C", "Concluída", "50", "0", "1", "0"),
	}, inputColumns())

	for _, op := range []models.AggregateOp{models.OpSum, models.OpMean, models.OpCount} {
		r, err := Aggregate(table, AggregateSpec{GroupKey: models.ColSalesperson, MetricKey: models.ColNetValue, Op: op})
		require.NoError(t, err)

		again := reaggregate(r)
		assert.Equal(t, r.Labels(), again.Labels(), op)
		for i := range r.Entries {
			assert.True(t, r.Entries[i].Value.Equal(again.Entries[i].Value), op)
		}
		assert.Equal(t, r.Labels(), r.Sorted().Labels())
	}
}

func TestBuildAggregateSet_CompletedOnlyRevenue(t *testing.T) {
	records := []models.SalesRecord{
		sale("Ana", "Cadeira", "Móveis", "Concluída", "100", "40", "1", "0.1"),
		sale("Bia", "Cadeira", "Móveis", "Concluída", "100", "40", "1", "0.1"),
		sale("Ana", "Mesa", "Móveis", "Devolvida", "50", "20", "1", "0"),
	}

	set, err := BuildAggregateSet(Derive(records, inputColumns()), models.DefaultStatusRules())
	require.NoError(t, err)

	revenue, ok := set.Scalar(models.AggTotalNetRevenue)
	require.True(t, ok)
	assert.Equal(t, "180.00", revenue.StringFixed(2))

	profit, _ := set.Scalar(models.AggTotalProfit)
	assert.Equal(t, "100.00", profit.StringFixed(2))

	status, ok := set.Ranking(models.AggStatusDistribution)
	require.True(t, ok)
	completed, _ := status.Lookup("Concluída")
	returned, _ := status.Lookup("Devolvida")
	assert.Equal(t, int64(2), completed.IntPart())
	assert.Equal(t, int64(1), returned.IntPart())

	rate, _ := set.Scalar(models.AggReturnRate)
	assert.Equal(t, "0.3333", rate.StringFixed(4))

	returns, _ := set.Ranking(models.AggReturnsBySalesperson)
	assert.Equal(t, []string{"Ana"}, returns.Labels())
}

func TestBuildAggregateSet_NonCompletedRowChangesRevenueByZero(t *testing.T) {
	base := []models.SalesRecord{
		sale("Ana", "Cadeira", "Móveis", "Concluída", "100", "40", "2", "0.05"),
		sale("Bia", "Mesa", "Móveis", "Concluída", "80", "30", "1", "0"),
	}
	extra := sale("Caio", "Sofá", "Estofados", "Cancelada", "999", "1", "5", "0")

	before, err := BuildAggregateSet(Derive(base, inputColumns()), models.DefaultStatusRules())
	require.NoError(t, err)
	after, err := BuildAggregateSet(Derive(append(base, extra), inputColumns()), models.DefaultStatusRules())
	require.NoError(t, err)

	for _, name := range []string{models.AggTotalNetRevenue, models.AggTotalProfit, models.AggTotalGrossRevenue} {
		b, _ := before.Scalar(name)
		a, _ := after.Scalar(name)
		assert.True(t, b.Equal(a), name)
	}

	status, _ := after.Ranking(models.AggStatusDistribution)
	cancelled, ok := status.Lookup("Cancelada")
	require.True(t, ok)
	assert.Equal(t, int64(1), cancelled.IntPart())

	total, _ := after.Scalar(models.AggTotalSales)
	assert.Equal(t, int64(3), total.IntPart())
}

func TestBuildAggregateSet_LeadersAndProfiles(t *testing.T) {
	records := []models.SalesRecord{
		sale("Bia", "Mesa", "Móveis", "Concluída", "200", "100", "1", "0"),
		sale("Ana", "Cadeira", "Móveis", "Concluída", "100", "40", "1", "0"),
		sale("Ana", "Abajur", "Iluminação", "Concluída", "60", "20", "1", "0"),
		sale("Caio", "Abajur", "Iluminação", "Devolvida", "60", "20", "1", "0"),
	}

	set, err := BuildAggregateSet(Derive(records, inputColumns()), models.DefaultStatusRules())
	require.NoError(t, err)

	leaders := set.Leaders()
	require.Len(t, leaders, 2)
	assert.Equal(t, "Móveis", leaders[0].Category)
	assert.Equal(t, "Mesa", leaders[0].Product)
	assert.Equal(t, "Abajur", leaders[1].Product)

	profiles := set.Profiles()
	require.Len(t, profiles, 3)
	assert.Equal(t, "Bia", profiles[0].Name)
	assert.Equal(t, "Caio", profiles[2].Name)
	assert.Equal(t, 1, profiles[2].Returns)
	assert.True(t, profiles[2].Revenue.IsZero())
	assert.Equal(t, 2, profiles[1].Sales)

	b := ComputeBaselines(set)
	// Bia 200, Ana 160 and Caio 0
	assert.Equal(t, "120.00", b.AvgRevenue.StringFixed(2))
	assert.Equal(t, 3, b.Salespeople)
}

func TestComputeBaselines_CountsEverySalesperson(t *testing.T) {
	records := []models.SalesRecord{
		sale("Ana", "Cadeira", "Móveis", "Concluída", "100", "40", "1", "0"),
		sale("Bia", "Mesa", "Móveis", "Devolvida", "200", "100", "1", "0"),
	}

	set, err := BuildAggregateSet(Derive(records, inputColumns()), models.DefaultStatusRules())
	require.NoError(t, err)

	b := ComputeBaselines(set)
	assert.Equal(t, 2, b.Salespeople)
	assert.Equal(t, "50.00", b.AvgRevenue.StringFixed(2))
	assert.Equal(t, "30.00", b.AvgProfit.StringFixed(2))
	assert.Equal(t, "0.50", b.AvgReturns.StringFixed(2))
	assert.True(t, b.AvgDiscountRate.IsZero())

	empty := ComputeBaselines(models.NewAggregateSet())
	assert.Zero(t, empty.Salespeople)
	assert.True(t, empty.AvgRevenue.IsZero())
}

func TestBuildAggregateSet_BranchOnlyPhysical(t *testing.T) {
	online := sale("Ana", "Mesa", "Móveis", "Concluída", "500", "100", "1", "0")
	online.Channel = "Online"
	online.Branch = "Web"

	set, err := BuildAggregateSet(Derive([]models.SalesRecord{
		online,
		sale("Bia", "Mesa", "Móveis", "Concluída", "100", "50", "1", "0"),
	}, inputColumns()), models.DefaultStatusRules())
	require.NoError(t, err)

	branches, _ := set.Ranking(models.AggRevenueByBranch)
	assert.Equal(t, []string{"Centro"}, branches.Labels())
}

// reaggregate folds entries that share an entity using the ranking's op and
// re-sorts.
func reaggregate(r models.Ranking) models.Ranking {
	type group struct {
		value decimal.Decimal
		count int
	}
	groups := make(map[string]*group)
	var order []string

	for _, e := range r.Entries {
		g, ok := groups[e.Entity]
		if !ok {
			g = &group{value: decimal.Zero}
			groups[e.Entity] = g
			order = append(order, e.Entity)
		}
		switch r.Op {
		case models.OpMean:
			// weight by group size so folding keeps the overall mean
			g.value = g.value.Add(e.Value.Mul(decimal.NewFromInt(int64(e.Count))))
		default:
			g.value = g.value.Add(e.Value)
		}
		g.count += e.Count
	}

	out := r
	out.Entries = make([]models.RankEntry, 0, len(order))
	for _, key := range order {
		g := groups[key]
		value := g.value
		if r.Op == models.OpMean && g.count > 0 {
			value = g.value.Div(decimal.NewFromInt(int64(g.count)))
		}
		out.Entries = append(out.Entries, models.RankEntry{Entity: key, Value: value, Count: g.count})
	}
	return out.Sorted()
}

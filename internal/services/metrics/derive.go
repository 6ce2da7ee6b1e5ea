package metrics

import (
	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// DeriveRecord computes the financial columns of one sale:
//
//	gross    = unit price * quantity
//	discount = gross * discount fraction
//	net      = gross - discount
//	cost     = unit cost * quantity
//	profit   = net - cost
func DeriveRecord(r models.SalesRecord) models.DerivedRecord {
	gross := r.UnitPrice.Mul(r.Quantity)
	discount := gross.Mul(r.DiscountFraction)
	net := gross.Sub(discount)
	cost := r.UnitCost.Mul(r.Quantity)

	return models.DerivedRecord{
		SalesRecord:   r,
		GrossValue:    gross,
		DiscountValue: discount,
		NetValue:      net,
		TotalCost:     cost,
		Profit:        net.Sub(cost),
	}
}

// Derive builds the derived table from normalized records. columns are the
// input columns; the derived columns are appended.
func Derive(records []models.SalesRecord, columns []string) *models.Table {
	derived := make([]models.DerivedRecord, len(records))
	for i, r := range records {
		derived[i] = DeriveRecord(r)
	}

	all := make([]string, 0, len(columns)+len(models.DerivedColumns))
	all = append(all, columns...)
	all = append(all, models.DerivedColumns...)

	return models.NewTable(derived, all)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Input column names of the sales export.
const (
	ColSaleID        = "ID_Venda"
	ColCustomerID    = "ID_Cliente"
	ColSalespersonID = "ID_Vendedor"
	ColSalesperson   = "Nome_Vendedor"
	ColSKU           = "SKU"
	ColProduct       = "Nome_Produto"
	ColCategory      = "Categoria"
	ColUnitPrice     = "Valor_Unitario"
	ColUnitCost      = "Custo_Unitario"
	ColQuantity      = "Quantidade"
	ColDiscount      = "Desconto_Aplicado_Percent"
	ColCustomerType  = "Tipo_Cliente"
	ColBranch        = "Filial"
	ColChannel       = "Canal_Venda"
	ColPaymentMethod = "Metodo_Pagamento"
	ColStatus        = "Status_Venda"
	ColSoldAt        = "Data_Hora_Venda"
)

// Derived column names added by the metric deriver.
const (
	ColGrossValue    = "Valor_Bruto"
	ColDiscountValue = "Valor_Desconto_Reais"
	ColNetValue      = "Valor_Total"
	ColTotalCost     = "Custo_Total"
	ColProfit        = "Lucro"
)

// RequiredColumns must be present in every input table.
var RequiredColumns = []string{
	ColSalesperson,
	ColProduct,
	ColCategory,
	ColUnitPrice,
	ColUnitCost,
	ColQuantity,
	ColDiscount,
	ColCustomerType,
	ColBranch,
	ColChannel,
	ColPaymentMethod,
	ColStatus,
}

// OptionalColumns are read when present.
var OptionalColumns = []string{
	ColSaleID,
	ColCustomerID,
	ColSalespersonID,
	ColSKU,
	ColSoldAt,
}

// DerivedColumns lists the columns DeriveRecord computes.
var DerivedColumns = []string{
	ColGrossValue,
	ColDiscountValue,
	ColNetValue,
	ColTotalCost,
	ColProfit,
}

// SalesRecord is one normalized row of the sales export.
// DiscountFraction is expected in [0,1] but not enforced here.
type SalesRecord struct {
	Row              int // 1-based data row number in the source file
	SaleID           string
	CustomerID       string
	SalespersonID    string
	Salesperson      string
	SKU              string
	Product          string
	Category         string
	Branch           string
	Channel          string
	PaymentMethod    string
	Status           string
	CustomerType     string
	UnitPrice        decimal.Decimal
	UnitCost         decimal.Decimal
	Quantity         decimal.Decimal
	DiscountFraction decimal.Decimal
	SoldAt           time.Time
}

// DerivedRecord is a SalesRecord extended with computed financial columns.
type DerivedRecord struct {
	SalesRecord
	GrossValue    decimal.Decimal
	DiscountValue decimal.Decimal
	NetValue      decimal.Decimal
	TotalCost     decimal.Decimal
	Profit        decimal.Decimal
}

// Dimension returns the categorical value stored under a column name.
func (r DerivedRecord) Dimension(column string) (string, bool) {
	switch column {
	case ColSaleID:
		return r.SaleID, true
	case ColCustomerID:
		return r.CustomerID, true
	case ColSalespersonID:
		return r.SalespersonID, true
	case ColSalesperson:
		return r.Salesperson, true
	case ColSKU:
		return r.SKU, true
	case ColProduct:
		return r.Product, true
	case ColCategory:
		return r.Category, true
	case ColBranch:
		return r.Branch, true
	case ColChannel:
		return r.Channel, true
	case ColPaymentMethod:
		return r.PaymentMethod, true
	case ColStatus:
		return r.Status, true
	case ColCustomerType:
		return r.CustomerType, true
	}
	return "", false
}

// Measure returns the numeric value stored under a column name.
func (r DerivedRecord) Measure(column string) (decimal.Decimal, bool) {
	switch column {
	case ColUnitPrice:
		return r.UnitPrice, true
	case ColUnitCost:
		return r.UnitCost, true
	case ColQuantity:
		return r.Quantity, true
	case ColDiscount:
		return r.DiscountFraction, true
	case ColGrossValue:
		return r.GrossValue, true
	case ColDiscountValue:
		return r.DiscountValue, true
	case ColNetValue:
		return r.NetValue, true
	case ColTotalCost:
		return r.TotalCost, true
	case ColProfit:
		return r.Profit, true
	}
	return decimal.Zero, false
}

// IsDimension reports whether column names a categorical field.
func IsDimension(column string) bool {
	_, ok := DerivedRecord{}.Dimension(column)
	return ok
}

// IsMeasure reports whether column names a numeric field.
func IsMeasure(column string) bool {
	_, ok := DerivedRecord{}.Measure(column)
	return ok
}

// Table is an immutable, ordered collection of derived records together with
// the set of columns the source provided (plus derived columns once computed).
type Table struct {
	records []DerivedRecord
	columns map[string]bool
	order   []string
}

// NewTable builds a table; records and columns are copied.
func NewTable(records []DerivedRecord, columns []string) *Table {
	t := &Table{
		records: make([]DerivedRecord, len(records)),
		columns: make(map[string]bool, len(columns)),
	}
	copy(t.records, records)
	for _, c := range columns {
		if t.columns[c] {
			continue
		}
		t.columns[c] = true
		t.order = append(t.order, c)
	}
	return t
}

// Records returns a copy of the rows.
func (t *Table) Records() []DerivedRecord {
	out := make([]DerivedRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Columns returns the present column names in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// HasColumn reports whether the column is present.
func (t *Table) HasColumn(name string) bool {
	return t.columns[name]
}

// MissingColumns returns the names from want that are absent, in order.
func (t *Table) MissingColumns(want ...string) []string {
	var missing []string
	for _, c := range want {
		if !t.columns[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Filter returns a new table holding the rows keep accepts, same columns.
func (t *Table) Filter(keep func(DerivedRecord) bool) *Table {
	var rows []DerivedRecord
	for _, r := range t.records {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return NewTable(rows, t.order)
}

// WithoutColumn returns a copy of the table with a column marked absent.
func (t *Table) WithoutColumn(name string) *Table {
	var cols []string
	for _, c := range t.order {
		if c != name {
			cols = append(cols, c)
		}
	}
	return NewTable(t.records, cols)
}

// StatusRules names the status and channel values with business meaning.
type StatusRules struct {
	Completed string
	Returned  string
	Physical  string
}

// DefaultStatusRules matches the values used by the sales export.
func DefaultStatusRules() StatusRules {
	return StatusRules{
		Completed: "Concluída",
		Returned:  "Devolvida",
		Physical:  "Física",
	}
}

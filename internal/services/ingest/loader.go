package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/MrNicolass/Minsmy-AI-Sales/internal/models"
)

// timestamp layouts seen in sales exports
var soldAtLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"02/01/2006",
}

// Options configures the CSV format.
type Options struct {
	Separator        rune
	DecimalSeparator rune
}

// DefaultOptions matches the sales export: semicolon fields, comma decimals.
func DefaultOptions() Options {
	return Options{Separator: ';', DecimalSeparator: ','}
}

// OptionsFromStrings builds Options from single-character config values.
func OptionsFromStrings(separator, decimalSep string) (Options, error) {
	opts := DefaultOptions()
	if separator != "" {
		r, size := utf8.DecodeRuneInString(separator)
		if size != len(separator) {
			return opts, fmt.Errorf("separator must be a single character: %q", separator)
		}
		opts.Separator = r
	}
	if decimalSep != "" {
		r, size := utf8.DecodeRuneInString(decimalSep)
		if size != len(decimalSep) {
			return opts, fmt.Errorf("decimal separator must be a single character: %q", decimalSep)
		}
		opts.DecimalSeparator = r
	}
	return opts, nil
}

// Loader reads the sales export into normalized records.
type Loader struct {
	opts   Options
	logger arbor.ILogger
}

// NewLoader creates a loader.
func NewLoader(opts Options, logger arbor.ILogger) *Loader {
	return &Loader{opts: opts, logger: logger}
}

// Result is the normalized input: records plus the columns the file carried.
type Result struct {
	Records []models.SalesRecord
	Columns []string
}

// LoadFile opens path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	defer f.Close()
	return l.Load(ctx, f)
}

// Load parses r. The first row is the header. A missing required column or
// a malformed numeric cell aborts the load.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.Comma = l.opts.Separator
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRecords
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	columns := make([]string, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
		columns = append(columns, name)
	}

	for _, required := range models.RequiredColumns {
		if _, ok := index[required]; !ok {
			return nil, &MissingColumnError{Column: required}
		}
	}

	var records []models.SalesRecord
	outOfRange := 0
	row := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		rec, err := l.parseRow(fields, index, row)
		if err != nil {
			return nil, err
		}
		if rec.DiscountFraction.IsNegative() || rec.DiscountFraction.GreaterThan(decimal.NewFromInt(1)) ||
			rec.Quantity.IsNegative() || rec.UnitPrice.IsNegative() || rec.UnitCost.IsNegative() {
			outOfRange++
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	if outOfRange > 0 {
		l.logger.Warn().
			Int("rows", outOfRange).
			Msg("Rows with out-of-range discount, quantity or price values")
	}

	l.logger.Info().
		Int("rows", len(records)).
		Int("columns", len(columns)).
		Msg("Sales input loaded")

	return &Result{Records: records, Columns: columns}, nil
}

func (l *Loader) parseRow(fields []string, index map[string]int, row int) (models.SalesRecord, error) {
	get := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	rec := models.SalesRecord{
		Row:           row,
		SaleID:        get(models.ColSaleID),
		CustomerID:    get(models.ColCustomerID),
		SalespersonID: get(models.ColSalespersonID),
		Salesperson:   get(models.ColSalesperson),
		SKU:           get(models.ColSKU),
		Product:       get(models.ColProduct),
		Category:      get(models.ColCategory),
		Branch:        get(models.ColBranch),
		Channel:       get(models.ColChannel),
		PaymentMethod: get(models.ColPaymentMethod),
		Status:        get(models.ColStatus),
		CustomerType:  get(models.ColCustomerType),
	}

	numeric := []struct {
		column string
		dest   *decimal.Decimal
	}{
		{models.ColUnitPrice, &rec.UnitPrice},
		{models.ColUnitCost, &rec.UnitCost},
		{models.ColQuantity, &rec.Quantity},
		{models.ColDiscount, &rec.DiscountFraction},
	}
	for _, n := range numeric {
		d, err := NormalizeField(get(n.column), row, n.column, l.opts.DecimalSeparator)
		if err != nil {
			return rec, err
		}
		*n.dest = d
	}

	if raw := get(models.ColSoldAt); raw != "" {
		for _, layout := range soldAtLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				rec.SoldAt = t
				break
			}
		}
	}

	return rec, nil
}

package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

const header = "ID_Venda;Nome_Vendedor;Nome_Produto;Categoria;Valor_Unitario;Custo_Unitario;Quantidade;Desconto_Aplicado_Percent;Tipo_Cliente;Filial;Canal_Venda;Metodo_Pagamento;Status_Venda;Data_Hora_Venda\n"

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"12,5", "12.5", false},
		{"12.5", "12.5", false},
		{"3", "3", false},
		{" -0,25 ", "-0.25", false},
		{"0,1", "0.1", false},
		{"", "", true},
		{"NA", "", true},
		{"abc", "", true},
		{"1.234,56", "", true},
		{"1,2,3", "", true},
		{",", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDecimal(tt.raw, ',')
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestNormalizeField_NamesRowAndColumn(t *testing.T) {
	_, err := NormalizeField("abc", 7, "Valor_Unitario", ',')
	require.Error(t, err)

	var malformed *MalformedNumericFieldError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 7, malformed.Row)
	assert.Equal(t, "Valor_Unitario", malformed.Column)
	assert.True(t, errors.Is(err, ErrMalformedNumericField))
	assert.Contains(t, err.Error(), "Valor_Unitario")
}

func TestLoad_ParsesRecords(t *testing.T) {
	input := "\xef\xbb\xbf" + header +
		"V1;Ana;Cadeira;Móveis;100,00;40,00;1;0,1;Varejo;Centro;Física;Pix;Concluída;2025-03-01 10:00:00\n" +
		"V2;Bruno;Mesa;Móveis;50;30;2;0;Atacado;Norte;Online;Cartão;Devolvida;01/03/2025 11:30\n"

	loader := NewLoader(DefaultOptions(), arbor.NewLogger())
	result, err := loader.Load(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	first := result.Records[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "V1", first.SaleID)
	assert.Equal(t, "Ana", first.Salesperson)
	assert.Equal(t, "Física", first.Channel)
	assert.True(t, decimal.NewFromInt(100).Equal(first.UnitPrice))
	assert.True(t, decimal.RequireFromString("0.1").Equal(first.DiscountFraction))
	assert.Equal(t, 2025, first.SoldAt.Year())

	second := result.Records[1]
	assert.Equal(t, "Devolvida", second.Status)
	assert.Equal(t, 11, second.SoldAt.Hour())

	assert.Contains(t, result.Columns, "ID_Venda")
	assert.Contains(t, result.Columns, "Data_Hora_Venda")
}

func TestLoad_MissingRequiredColumn(t *testing.T) {
	input := strings.Replace(header, "Filial;", "", 1) +
		"V1;Ana;Cadeira;Móveis;100;40;1;0,1;Varejo;Física;Pix;Concluída;2025-03-01\n"

	loader := NewLoader(DefaultOptions(), arbor.NewLogger())
	_, err := loader.Load(context.Background(), strings.NewReader(input))
	require.Error(t, err)

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Filial", missing.Column)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestLoad_MalformedNumericAborts(t *testing.T) {
	input := header +
		"V1;Ana;Cadeira;Móveis;100;40;1;0,1;Varejo;Centro;Física;Pix;Concluída;\n" +
		"V2;Ana;Cadeira;Móveis;abc;40;1;0,1;Varejo;Centro;Física;Pix;Concluída;\n"

	loader := NewLoader(DefaultOptions(), arbor.NewLogger())
	_, err := loader.Load(context.Background(), strings.NewReader(input))
	require.Error(t, err)

	var malformed *MalformedNumericFieldError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 2, malformed.Row)
	assert.Equal(t, "Valor_Unitario", malformed.Column)
}

func TestLoad_HeaderOnly(t *testing.T) {
	loader := NewLoader(DefaultOptions(), arbor.NewLogger())

	_, err := loader.Load(context.Background(), strings.NewReader(header))
	assert.ErrorIs(t, err, ErrNoRecords)

	_, err = loader.Load(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestLoad_RowLengthMismatch(t *testing.T) {
	input := header + "V1;Ana;Cadeira\n"

	loader := NewLoader(DefaultOptions(), arbor.NewLogger())
	_, err := loader.Load(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestOptionsFromStrings(t *testing.T) {
	opts, err := OptionsFromStrings(",", ".")
	require.NoError(t, err)
	assert.Equal(t, ',', opts.Separator)
	assert.Equal(t, '.', opts.DecimalSeparator)

	_, err = OptionsFromStrings(";;", ",")
	assert.Error(t, err)
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/api-inventario/internal/application/usecase"
	"github.com/jhoicas/api-inventario/internal/domain"
	"github.com/jhoicas/api-inventario/internal/infrastructure/memstore"
)

func TestImportProducts_Exito(t *testing.T) {
	store := memstore.New()
	uc := usecase.NewProductUseCase(store.Products())
	csvData := "Name,Batch_Number,unit_price,available_quantity,intake_date\n" +
		"Arroz,L-1,2.35,10,2024-05-01\n" +
		"Leche, L-2 ,0.10,50,2024-05-02\n"

	res, err := ImportProducts(context.Background(), uc, strings.NewReader(csvData), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.Failed)

	list, err := uc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Arroz", list.Items[0].Name)
	assert.Equal(t, "L-2", list.Items[1].BatchNumber)
	assert.Equal(t, "0.10", list.Items[1].UnitPrice.StringFixed(2))
}

func TestImportProducts_FilasInvalidasNoDetienen(t *testing.T) {
	uc := usecase.NewProductUseCase(memstore.New().Products())
	csvData := "batch_number;name;unit_price;available_quantity;intake_date\n" +
		"L-1;Arroz;abc;10;2024-05-01\n" +
		"L-2;Azúcar;1.50;-3;2024-05-01\n" +
		"L-3;Sal;0.50;8;2024-05-01\n" +
		"L-4;Pan;1.00;2;01/05/2024\n"

	res, err := ImportProducts(context.Background(), uc, strings.NewReader(csvData), ImportOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Failed, 3)
	assert.Equal(t, 2, res.Failed[0].Line)
	assert.Equal(t, 3, res.Failed[1].Line)
	assert.ErrorIs(t, res.Failed[1].Err, domain.ErrInvalidInput)
	assert.Equal(t, 5, res.Failed[2].Line)
}

func TestImportProducts_Latin1(t *testing.T) {
	uc := usecase.NewProductUseCase(memstore.New().Products())
	// "Piña" y "Jalapeño" en ISO-8859-1 (ñ = 0xF1).
	raw := []byte("batch_number,name,unit_price,available_quantity,intake_date\n" +
		"L-1,Pi\xf1a,3.00,4,2024-05-01\n" +
		"L-2,Jalape\xf1o,1.25,9,2024-05-01\n")

	res, err := ImportProducts(context.Background(), uc, bytes.NewReader(raw), ImportOptions{Latin1: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)

	list, err := uc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "Piña", list.Items[0].Name)
	assert.Equal(t, "Jalapeño", list.Items[1].Name)
}

func TestImportProducts_CabeceraIncompleta(t *testing.T) {
	uc := usecase.NewProductUseCase(memstore.New().Products())
	_, err := ImportProducts(context.Background(), uc, strings.NewReader("name,unit_price\nArroz,1\n"), ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_number")

	_, err = ImportProducts(context.Background(), uc, strings.NewReader(""), ImportOptions{})
	assert.Error(t, err)
}

func TestParseDelimiter(t *testing.T) {
	r, err := parseDelimiter(";")
	require.NoError(t, err)
	assert.Equal(t, ';', r)

	r, err = parseDelimiter(`\t`)
	require.NoError(t, err)
	assert.Equal(t, '\t', r)

	_, err = parseDelimiter(";;")
	assert.Error(t, err)
}

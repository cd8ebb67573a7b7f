package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/api-inventario/internal/application/dto"
	"github.com/jhoicas/api-inventario/internal/application/usecase"
	"github.com/jhoicas/api-inventario/internal/infrastructure/postgres"
)

// Columnas requeridas del CSV (cabecera, sin importar el orden ni mayúsculas).
var importColumns = []string{"batch_number", "name", "unit_price", "available_quantity", "intake_date"}

// ImportResult resumen de una importación.
type ImportResult struct {
	Created int
	Failed  []RowError
}

// RowError error de una fila del CSV (Line cuenta desde 1, incluyendo la cabecera).
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

func newImportProductsCmd(e *env) *cobra.Command {
	var (
		latin1    bool
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "import-products <archivo.csv>",
		Short: "Importa productos desde un CSV",
		Long: "Importa productos desde un CSV con cabecera " + strings.Join(importColumns, ",") + ".\n" +
			"Fechas en formato YYYY-MM-DD. Use --latin1 para archivos exportados en ISO-8859-1.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sep, err := parseDelimiter(delimiter)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("abrir CSV: %w", err)
			}
			defer f.Close()

			pool, _, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			uc := usecase.NewProductUseCase(postgres.NewProductRepository(pool))
			res, err := ImportProducts(cmd.Context(), uc, f, ImportOptions{Latin1: latin1, Delimiter: sep})
			if err != nil {
				return err
			}
			for _, rowErr := range res.Failed {
				fmt.Fprintln(cmd.ErrOrStderr(), rowErr.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "productos creados: %d, filas con error: %d\n", res.Created, len(res.Failed))
			e.log.Info().Str("file", args[0]).Int("created", res.Created).Int("failed", len(res.Failed)).Msg("importación de productos")
			if len(res.Failed) > 0 {
				return fmt.Errorf("%d fila(s) no importadas", len(res.Failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&latin1, "latin1", false, "el archivo está codificado en ISO-8859-1")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "separador de columnas")
	return cmd
}

// ImportOptions formato del archivo.
type ImportOptions struct {
	Latin1    bool
	Delimiter rune
}

// ImportProducts crea un producto por fila a través del caso de uso (mismas validaciones que la API).
// Las filas inválidas se reportan en ImportResult.Failed y no detienen la importación;
// un error de formato del CSV sí la detiene.
func ImportProducts(ctx context.Context, uc *usecase.ProductUseCase, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV vacío")
		}
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("línea %d: %w", line, err)
		}
		in, err := toCreateRequest(record, idx)
		if err == nil {
			_, err = uc.Create(ctx, in)
		}
		if err != nil {
			res.Failed = append(res.Failed, RowError{Line: line, Err: err})
			continue
		}
		res.Created++
	}
	return res, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// BOM de UTF-8 en la primera columna de archivos exportados desde Excel.
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range importColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("faltan columnas: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func toCreateRequest(record []string, idx map[string]int) (dto.CreateProductRequest, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	price, err := decimal.NewFromString(get("unit_price"))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("unit_price inválido %q", get("unit_price"))
	}
	qty, err := strconv.Atoi(get("available_quantity"))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("available_quantity inválido %q", get("available_quantity"))
	}
	in := dto.CreateProductRequest{
		BatchNumber:       get("batch_number"),
		Name:              get("name"),
		UnitPrice:         price,
		AvailableQuantity: qty,
		IntakeDate:        get("intake_date"),
	}
	if in.BatchNumber == "" || in.Name == "" {
		return in, errors.New("batch_number y name son requeridos")
	}
	return in, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("--delimiter debe ser un único carácter")
	}
	return runes[0], nil
}

// Package storage loads the local product catalog from disk.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/medirec/backend/internal/domain"
)

// requiredColumns are the CSV columns a product file must carry.
var requiredColumns = []string{"id", "name", "category", "price", "description"}

// LoadProducts reads the product catalog from a CSV file. The whole load
// fails on a missing file, missing columns, or any unparseable row; partial
// catalogs are never returned.
func LoadProducts(path string) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: products file %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening products file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read header of %s: %v", domain.ErrDataFormat, path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", domain.ErrDataFormat, strings.Join(missing, ", "))
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataFormat, err)
	}

	products := make([]domain.Product, 0, len(rows))
	for i, row := range rows {
		product, err := rowToProduct(row, columns)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrDataFormat, i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

func rowToProduct(row []string, columns map[string]int) (domain.Product, error) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	id, err := strconv.Atoi(strings.TrimSpace(field("id")))
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid id %q", field("id"))
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(field("price")), 64)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid price %q", field("price"))
	}

	return domain.NewProduct(id, field("name"), field("category"), price, field("description"))
}

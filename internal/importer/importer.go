package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product, position int) error
}

// Kind is the detected format of an import file.
type Kind string

const (
	KindJSON Kind = "json"
	KindCSV  Kind = "csv"
)

// DetectKind looks at the first non-blank byte: JSON documents start with
// '[' or '{', anything else is treated as CSV with a header row.
func DetectKind(data []byte) (Kind, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", errors.New("empty import file")
	}
	switch trimmed[0] {
	case '[', '{':
		return KindJSON, nil
	}
	return KindCSV, nil
}

// Run imports data in either format and returns the number of products written.
// Products keep their document order as display position.
func Run(ctx context.Context, data []byte, w ProductWriter) (int, error) {
	kind, err := DetectKind(data)
	if err != nil {
		return 0, err
	}
	var products []domain.Product
	switch kind {
	case KindJSON:
		products, err = catalog.Decode(data)
	default:
		products, err = NewCSVImporter(bytes.NewReader(data)).Parse()
	}
	if err != nil {
		return 0, err
	}
	return write(ctx, products, w)
}

func write(ctx context.Context, products []domain.Product, w ProductWriter) (int, error) {
	imported := 0
	for i, p := range products {
		if err := w.Upsert(ctx, p, i); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.ID, err)
		}
		imported++
	}
	return imported, nil
}

// CSVImporter reads spreadsheet exports with the columns id, name, price,
// description and image. Column order is free; unknown columns are ignored.
type CSVImporter struct {
	reader *csv.Reader
}

func NewCSVImporter(r io.Reader) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr}
}

// Parse reads every row. Blank rows are skipped; rows missing id, name or a
// valid price reject the whole file, as do duplicate ids.
func (i *CSVImporter) Parse() ([]domain.Product, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"id", "name", "price"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	var (
		products []domain.Product
		seen     = map[string]struct{}{}
		line     = 1
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		p, ok, err := parseRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if !ok {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("row %d: duplicate id %q", line, p.ID)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}
	return products, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, bool, error) {
	id := pick(record, index, "id")
	name := pick(record, index, "name")
	price := pick(record, index, "price")
	desc := pick(record, index, "description")
	image := pick(record, index, "image")

	if id == "" && name == "" && price == "" {
		return domain.Product{}, false, nil
	}
	if id == "" || name == "" {
		return domain.Product{}, false, fmt.Errorf("id and name are required")
	}
	amount, err := catalog.ParsePrice(price)
	if err != nil {
		return domain.Product{}, false, fmt.Errorf("price: %w", err)
	}
	return domain.Product{ID: id, Name: name, Price: amount, Description: desc, Image: image}, true, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

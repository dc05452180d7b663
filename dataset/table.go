package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrDatasetNotFound  = errors.New("dataset not found")
	ErrMalformedDataset = errors.New("malformed dataset")
	ErrUnknownColumn    = errors.New("unknown column")
)

// Table is the reference dataset held in memory. It is never modified after
// construction, so it can be shared between goroutines.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]float64
}

func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	table, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Read parses a comma-separated table whose first record is the header and
// whose remaining cells are all finite numbers. A leading UTF-8 byte order mark is
// skipped.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedDataset, err)
	}

	var rows [][]float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDataset, err)
		}
		line, _ := reader.FieldPos(0)
		row := make([]float64, len(record))
		for i, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
				err = strconv.ErrSyntax
			}
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %q is not a number",
					ErrMalformedDataset, line, header[i], cell)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return NewTable(header, rows)
}

func NewTable(columns []string, rows [][]float64) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrMalformedDataset)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedDataset)
	}
	t := &Table{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]float64, len(rows)),
	}
	for i, name := range columns {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has no name", ErrMalformedDataset, i)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %s", ErrMalformedDataset, name)
		}
		t.columns[i] = name
		t.index[name] = i
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrMalformedDataset, i, len(row), len(columns))
		}
		t.rows[i] = append([]float64(nil), row...)
	}
	return t, nil
}

func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Row(i int) []float64 {
	return append([]float64(nil), t.rows[i]...)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column's values in row order.
func (t *Table) Column(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	values := make([]float64, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[j]
	}
	return values, nil
}

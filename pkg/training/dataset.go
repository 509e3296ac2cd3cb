// Package training implements the offline training job: load the
// historical sales table, fit the preprocessing pipeline and regressor
// on a training split, evaluate on the holdout, and persist the
// artifact atomically.
package training

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/priceworks/carprice/pkg/schema"
)

// TargetColumn is the price column the regressor is trained against.
const TargetColumn = "selling_price"

var (
	// ErrMissingTarget indicates the input table has no selling_price column.
	ErrMissingTarget = errors.New("training data is missing the selling_price column")

	// ErrEmptyDataset indicates no rows survived loading and deduplication.
	ErrEmptyDataset = errors.New("training data is empty after deduplication")
)

// Dataset is a loaded feature matrix with aligned target prices.
type Dataset struct {
	Features []schema.FeatureVector
	Prices   []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Features)
}

// LoadCSV reads the historical sales table. Exact-duplicate rows are
// dropped, columns outside the feature schema (the free-text name,
// model and edition identifiers) are ignored, and empty feature cells
// become missing values. An unparseable numeric
// cell or a missing/unparseable target is fatal: the training run must
// not proceed on corrupt data.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training data: %w", err)
	}
	defer f.Close()

	return readCSV(f)
}

func readCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	targetIdx, ok := col[TargetColumn]
	if !ok {
		return nil, ErrMissingTarget
	}

	ds := &Dataset{}
	seen := make(map[string]struct{})

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		// Exact-duplicate rows are dropped on the raw record, before
		// any parsing, matching dedup-then-fit order.
		rowKey := strings.Join(record, "\x1f")
		if _, dup := seen[rowKey]; dup {
			continue
		}
		seen[rowKey] = struct{}{}

		price, err := strconv.ParseFloat(strings.TrimSpace(record[targetIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad %s %q", line, TargetColumn, record[targetIdx])
		}

		v, err := parseFeatures(record, col, line)
		if err != nil {
			return nil, err
		}

		ds.Features = append(ds.Features, v)
		ds.Prices = append(ds.Prices, price)
	}

	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	return ds, nil
}

func parseFeatures(record []string, col map[string]int, line int) (schema.FeatureVector, error) {
	cell := func(name string) (string, bool) {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	num := func(name string) (*float64, error) {
		s, ok := cell(name)
		if !ok || s == "" {
			return nil, nil // absent column or empty cell: impute later
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad numeric %s %q", line, name, s)
		}
		return &f, nil
	}

	cat := func(name string) string {
		s, _ := cell(name)
		return s
	}

	var v schema.FeatureVector
	var err error

	if v.Year, err = num("year"); err != nil {
		return v, err
	}
	if v.KmDriven, err = num("km_driven"); err != nil {
		return v, err
	}
	if v.MileageMPG, err = num("mileage_mpg"); err != nil {
		return v, err
	}
	if v.EngineCC, err = num("engine_cc"); err != nil {
		return v, err
	}
	if v.MaxPowerBHP, err = num("max_power_bhp"); err != nil {
		return v, err
	}
	if v.TorqueNM, err = num("torque_nm"); err != nil {
		return v, err
	}
	if v.Seats, err = num("seats"); err != nil {
		return v, err
	}

	v.Company = cat("company")
	v.Owner = cat("owner")
	v.Fuel = cat("fuel")
	v.SellerType = cat("seller_type")
	v.Transmission = cat("transmission")

	return v, nil
}

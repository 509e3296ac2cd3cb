package training

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/priceworks/carprice/pkg/schema"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

const header = "name,model,edition,company,year,owner,fuel,seller_type,transmission,km_driven,mileage_mpg,engine_cc,max_power_bhp,torque_nm,seats,selling_price\n"

func row(name string, price string) string {
	return name + ",alto,std,Maruti,2017,First Owner,Petrol,Individual,Manual,45000,48.2,1197,81.8,113,5," + price + "\n"
}

func TestLoadCSV_Basic(t *testing.T) {
	path := writeCSV(t, header+row("a", "500000")+row("b", "600000"))

	ds, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("rows = %d, want 2", ds.Len())
	}
	if ds.Prices[0] != 500000 {
		t.Errorf("price[0] = %v, want 500000", ds.Prices[0])
	}
	if ds.Features[0].Company != "Maruti" {
		t.Errorf("company = %q, want Maruti", ds.Features[0].Company)
	}
	if ds.Features[0].Year == nil || *ds.Features[0].Year != 2017 {
		t.Errorf("year = %v, want 2017", ds.Features[0].Year)
	}
}

func TestLoadCSV_DropsExactDuplicates(t *testing.T) {
	path := writeCSV(t, header+row("a", "500000")+row("a", "500000")+row("b", "600000"))

	ds, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("rows after dedup = %d, want 2", ds.Len())
	}
}

func TestLoadCSV_NearDuplicatesKept(t *testing.T) {
	// Same features, different identifier: not an exact duplicate.
	path := writeCSV(t, header+row("a", "500000")+row("b", "500000"))

	ds, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("rows = %d, want 2", ds.Len())
	}
}

func TestLoadCSV_EmptyCellIsMissing(t *testing.T) {
	content := header +
		"a,alto,std,Maruti,2017,First Owner,Petrol,Individual,Manual,45000,48.2,1197,81.8,113,,500000\n"
	path := writeCSV(t, content)

	ds, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if ds.Features[0].Seats != nil {
		t.Errorf("empty seats cell = %v, want nil (missing)", *ds.Features[0].Seats)
	}
}

func TestLoadCSV_BadNumericIsFatal(t *testing.T) {
	content := header +
		"a,alto,std,Maruti,2017,First Owner,Petrol,Individual,Manual,lots,48.2,1197,81.8,113,5,500000\n"
	path := writeCSV(t, content)

	if _, err := LoadCSV(path); err == nil {
		t.Error("LoadCSV with unparseable km_driven did not fail")
	}
}

func TestLoadCSV_BadTargetIsFatal(t *testing.T) {
	path := writeCSV(t, header+row("a", "cheap"))

	if _, err := LoadCSV(path); err == nil {
		t.Error("LoadCSV with unparseable selling_price did not fail")
	}
}

func TestLoadCSV_MissingTargetColumn(t *testing.T) {
	path := writeCSV(t, "company,year\nMaruti,2017\n")

	_, err := LoadCSV(path)
	if !errors.Is(err, ErrMissingTarget) {
		t.Errorf("error = %v, want ErrMissingTarget", err)
	}
}

func TestLoadCSV_EmptyAfterDedup(t *testing.T) {
	path := writeCSV(t, header)

	_, err := LoadCSV(path)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("error = %v, want ErrEmptyDataset", err)
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("LoadCSV of missing file did not fail")
	}
}

func TestReadCSV_IgnoresUnknownColumns(t *testing.T) {
	content := "junk,selling_price,company\nx,100,Maruti\n"
	ds, err := readCSV(strings.NewReader(content))
	if err != nil {
		t.Fatalf("readCSV failed: %v", err)
	}
	if ds.Features[0].Company != "Maruti" {
		t.Errorf("company = %q, want Maruti", ds.Features[0].Company)
	}
	// All numeric feature columns absent: loaded as missing.
	if ds.Features[0].Year != nil {
		t.Errorf("absent year column parsed as %v, want nil", *ds.Features[0].Year)
	}
}

func TestSplit_Proportions(t *testing.T) {
	ds := &Dataset{}
	for i := 0; i < 100; i++ {
		ds.Features = append(ds.Features, schema.FeatureVector{})
		ds.Prices = append(ds.Prices, float64(i))
	}

	train, holdout := Split(ds, 0.2, 42)
	if train.Len() != 80 || holdout.Len() != 20 {
		t.Errorf("split = %d/%d, want 80/20", train.Len(), holdout.Len())
	}
}

func TestSplit_Reproducible(t *testing.T) {
	ds := &Dataset{}
	for i := 0; i < 50; i++ {
		ds.Features = append(ds.Features, schema.FeatureVector{})
		ds.Prices = append(ds.Prices, float64(i))
	}

	_, h1 := Split(ds, 0.2, 42)
	_, h2 := Split(ds, 0.2, 42)

	for i := range h1.Prices {
		if h1.Prices[i] != h2.Prices[i] {
			t.Fatalf("holdout differs at %d with identical seed", i)
		}
	}

	_, h3 := Split(ds, 0.2, 7)
	same := true
	for i := range h1.Prices {
		if h1.Prices[i] != h3.Prices[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical holdout")
	}
}

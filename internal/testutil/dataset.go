// Package testutil provides shared fixtures for training and
// integration tests: a deterministic synthetic vehicle sales table
// with a known price structure.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/priceworks/carprice/pkg/schema"
	"github.com/priceworks/carprice/pkg/training"
)

var (
	companies     = []string{"Maruti", "Hyundai", "Tata", "Honda", "Toyota"}
	companyFactor = map[string]float64{
		"Maruti":  0.9,
		"Hyundai": 1.0,
		"Tata":    0.85,
		"Honda":   1.1,
		"Toyota":  1.25,
	}
	owners        = []string{"First Owner", "Second Owner", "Third Owner"}
	fuels         = []string{"Petrol", "Diesel"}
	sellerTypes   = []string{"Individual", "Dealer"}
	transmissions = []string{"Manual", "Automatic"}
)

// SyntheticDataset generates n rows with prices following a known
// deterministic structure plus small noise, so tests can assert that
// trained models recover sane estimates.
func SyntheticDataset(n int, seed int64) *training.Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := &training.Dataset{}

	for i := 0; i < n; i++ {
		company := companies[rng.Intn(len(companies))]
		year := float64(2006 + rng.Intn(17))
		km := float64(5000 + rng.Intn(150000))
		power := 60 + rng.Float64()*120
		engine := 800 + rng.Float64()*2200
		transmission := transmissions[rng.Intn(len(transmissions))]

		v := schema.FeatureVector{
			Company:      company,
			Year:         schema.Float(year),
			Owner:        owners[rng.Intn(len(owners))],
			Fuel:         fuels[rng.Intn(len(fuels))],
			SellerType:   sellerTypes[rng.Intn(len(sellerTypes))],
			Transmission: transmission,
			KmDriven:     schema.Float(km),
			MileageMPG:   schema.Float(30 + rng.Float64()*30),
			EngineCC:     schema.Float(engine),
			MaxPowerBHP:  schema.Float(power),
			TorqueNM:     schema.Float(90 + rng.Float64()*200),
			Seats:        schema.Float(float64(4 + rng.Intn(4))),
		}

		ds.Features = append(ds.Features, v)
		ds.Prices = append(ds.Prices, SyntheticPrice(v, rng.NormFloat64()))
	}

	return ds
}

// SyntheticPrice is the ground-truth price function behind
// SyntheticDataset. noise is a standard-normal draw.
func SyntheticPrice(v schema.FeatureVector, noise float64) float64 {
	base := 120000.0 +
		22000*(*v.Year-2006) +
		1800*(*v.MaxPowerBHP) -
		1.2*(*v.KmDriven)

	price := base * companyFactor[v.Company]
	if v.Transmission == "Automatic" {
		price *= 1.15
	}
	price += noise * 5000

	if price < 30000 {
		price = 30000
	}
	return price
}

// WriteCSV persists a dataset as a training-input CSV in a temp dir,
// including the identifier columns the loader must ignore. Returns the
// file path.
func WriteCSV(t *testing.T, ds *training.Dataset) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("name,model,edition,company,year,owner,fuel,seller_type,transmission,km_driven,mileage_mpg,engine_cc,max_power_bhp,torque_nm,seats,selling_price\n")

	for i, v := range ds.Features {
		fmt.Fprintf(&b, "car-%d,mk-%d,base,%s,%.0f,%s,%s,%s,%s,%.0f,%.2f,%.0f,%.2f,%.2f,%.0f,%.2f\n",
			i, i%7,
			v.Company, *v.Year, v.Owner, v.Fuel, v.SellerType, v.Transmission,
			*v.KmDriven, *v.MileageMPG, *v.EngineCC, *v.MaxPowerBHP, *v.TorqueNM, *v.Seats,
			ds.Prices[i])
	}

	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write synthetic csv: %v", err)
	}
	return path
}

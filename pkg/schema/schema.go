// Package schema defines the fixed vehicle feature schema shared by the
// training pipeline and the prediction service. The set and order of
// columns is part of the trained artifact contract: both sides must
// agree on it byte for byte.
package schema

import (
	"math"
)

// NumericColumns lists the numeric feature columns in schema order.
var NumericColumns = []string{
	"year",
	"km_driven",
	"mileage_mpg",
	"engine_cc",
	"max_power_bhp",
	"torque_nm",
	"seats",
}

// CategoricalColumns lists the categorical feature columns in schema order.
var CategoricalColumns = []string{
	"company",
	"owner",
	"fuel",
	"seller_type",
	"transmission",
}

// FeatureVector describes one vehicle. Numeric fields are pointers so
// that an absent field survives JSON decoding as nil and is imputed
// downstream instead of silently becoming zero. An empty categorical
// string is likewise treated as missing.
type FeatureVector struct {
	Company      string   `json:"company"`
	Year         *float64 `json:"year"`
	Owner        string   `json:"owner"`
	Fuel         string   `json:"fuel"`
	SellerType   string   `json:"seller_type"`
	Transmission string   `json:"transmission"`
	KmDriven     *float64 `json:"km_driven"`
	MileageMPG   *float64 `json:"mileage_mpg"`
	EngineCC     *float64 `json:"engine_cc"`
	MaxPowerBHP  *float64 `json:"max_power_bhp"`
	TorqueNM     *float64 `json:"torque_nm"`
	Seats        *float64 `json:"seats"`
}

// Numeric returns the numeric feature values in NumericColumns order.
// Missing values are returned as NaN.
func (v FeatureVector) Numeric() []float64 {
	ptrs := []*float64{
		v.Year,
		v.KmDriven,
		v.MileageMPG,
		v.EngineCC,
		v.MaxPowerBHP,
		v.TorqueNM,
		v.Seats,
	}
	out := make([]float64, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	return out
}

// Categorical returns the categorical feature values in
// CategoricalColumns order. Missing values are returned as "".
func (v FeatureVector) Categorical() []string {
	return []string{
		v.Company,
		v.Owner,
		v.Fuel,
		v.SellerType,
		v.Transmission,
	}
}

// Float is a convenience for building numeric fields in literals.
func Float(f float64) *float64 {
	return &f
}

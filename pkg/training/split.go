package training

import (
	"math/rand"
)

// Split shuffles the dataset with the given seed and partitions it into
// train and holdout sets. holdoutFrac is the holdout share (0.2 for the
// standard 80/20 split). The split is reproducible: identical inputs
// and seed always produce identical partitions.
func Split(d *Dataset, holdoutFrac float64, seed int64) (train, holdout *Dataset) {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(d.Len())

	nHoldout := int(float64(d.Len()) * holdoutFrac)
	train = &Dataset{}
	holdout = &Dataset{}

	for i, idx := range perm {
		if i < nHoldout {
			holdout.Features = append(holdout.Features, d.Features[idx])
			holdout.Prices = append(holdout.Prices, d.Prices[idx])
		} else {
			train.Features = append(train.Features, d.Features[idx])
			train.Prices = append(train.Prices, d.Prices[idx])
		}
	}
	return train, holdout
}

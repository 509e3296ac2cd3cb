package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Fingerprint returns a stable digest of the feature vector, suitable
// as a cache key component. Equal vectors always produce equal
// fingerprints; any field change produces a different one.
//
// The digest is computed over a canonical serialization of all fields
// in schema order (categoricals first, then numerics). Field values are
// user-supplied free text, so the serialization is hashed rather than
// used as the key directly.
func (v FeatureVector) Fingerprint() string {
	var b strings.Builder

	cats := v.Categorical()
	for i, col := range CategoricalColumns {
		b.WriteString(col)
		b.WriteByte('=')
		b.WriteString(cats[i])
		b.WriteByte('\x1f')
	}

	nums := v.Numeric()
	for i, col := range NumericColumns {
		b.WriteString(col)
		b.WriteByte('=')
		// NaN formats as "NaN", giving missing values a stable encoding
		// distinct from every real value.
		b.WriteString(strconv.FormatFloat(nums[i], 'g', -1, 64))
		b.WriteByte('\x1f')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

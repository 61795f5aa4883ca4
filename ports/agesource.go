package ports

import (
	"context"
)

// AgeRecord is one observed event age with its dataset label.
type AgeRecord struct {
	Dataset string  `json:"dataset"`
	Age     float64 `json:"age"` // years, >= 0
}

// AgeSource supplies the empirical age table, order preserved as given by
// the underlying storage.
type AgeSource interface {
	Ages(ctx context.Context) ([]AgeRecord, error)
}

// AgeValues extracts the ordered numeric age values from a record sequence.
func AgeValues(records []AgeRecord) []float64 {
	ages := make([]float64, len(records))
	for i, rec := range records {
		ages[i] = rec.Age
	}
	return ages
}

// Package model defines the regressor contract shared by both forecasting
// lineages and the blob codec used to persist fitted state.
package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Regressor is an opaque fitted function from a feature vector to a price.
type Regressor interface {
	// Fit trains on row-major samples X against targets y.
	Fit(X [][]float64, y []float64) error

	// Predict evaluates one feature vector. Only valid after Fit.
	Predict(x []float64) float64
}

// Encode serializes fitted state for blob storage.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode model blob: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode restores fitted state from a blob.
func Decode(blob []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(v); err != nil {
		return fmt.Errorf("decode model blob: %w", err)
	}
	return nil
}

package domain

import "time"

// StrategyKind selects one of the two forecasting lineages. They are not
// interchangeable: the lagged lineage regresses the current price from lag
// features and uses the horizon only as a loop bound, while the windowed
// lineage regresses a horizon-shifted label from a flattened look-back window.
type StrategyKind string

const (
	// StrategyForest is the lagged-feature regression lineage backed by a
	// bagged ensemble of regression trees.
	StrategyForest StrategyKind = "forest"

	// StrategyWindow is the windowed-sequence regression lineage backed by a
	// small feed-forward network.
	StrategyWindow StrategyKind = "window"
)

// Valid reports whether k names a known strategy.
func (k StrategyKind) Valid() bool {
	return k == StrategyForest || k == StrategyWindow
}

// ModelBlobName returns the logical blob name for a strategy's fitted model.
func ModelBlobName(k StrategyKind) string {
	return "model." + string(k) + ".gob"
}

// ScalerBlobName returns the logical blob name for a strategy's fitted scaler.
// A scaler is only meaningful next to the model it was fitted with; the store
// does not validate the pairing.
func ScalerBlobName(k StrategyKind) string {
	return "scaler." + string(k) + ".gob"
}

// TrainingRun records the provenance of one completed training invocation.
type TrainingRun struct {
	RunID        string       // unique run identifier
	Strategy     StrategyKind // lineage that was trained
	Token        string       // prediction target token
	SampleCount  int          // training samples after warm-up trim
	FeatureCount int          // model input width
	HeldOutMSE   *float64     // mean squared error on the held-out split, nil when not evaluated
	TrainedAt    time.Time    // completion time (UTC)
	DurationMs   int64        // wall-clock training duration
}

// Prediction is the output of one predictor invocation.
type Prediction struct {
	Token          string       // predicted token
	Strategy       StrategyKind // lineage that produced the value
	Price          float64      // predicted price
	HorizonMinutes int          // requested future horizon
	PredictedAt    time.Time    // invocation time (UTC)
}

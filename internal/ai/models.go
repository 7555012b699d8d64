package ai

// ClassificationResult is the JSON shape the model is asked to produce.
type ClassificationResult struct {
	// Category is one of the offered slugs, or empty when nothing fits.
	Category string `json:"category"`

	// Confidence is the model's own estimate in [0, 1]. Low-confidence
	// answers are discarded.
	Confidence float64 `json:"confidence"`
}

// MinConfidence is the cut-off below which a classification is ignored.
const MinConfidence = 0.5

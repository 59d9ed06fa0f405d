package ai

// Purpose selects the model and sampling parameters for a completion.
type Purpose int

const (
	// PurposeExpansion rewrites a question into alternative search queries.
	PurposeExpansion Purpose = iota
	// PurposeClassification answers the OUI/NON domain relevance question.
	PurposeClassification
	// PurposeSynthesis writes the final answer from retrieved context.
	PurposeSynthesis
)

func (p Purpose) String() string {
	switch p {
	case PurposeExpansion:
		return "expansion"
	case PurposeClassification:
		return "classification"
	case PurposeSynthesis:
		return "synthesis"
	default:
		return "unknown"
	}
}

// Sampling holds the generation parameters attached to a Purpose.
// A zero MaxTokens leaves the server default in place.
type Sampling struct {
	Temperature float64
	MaxTokens   int
}

// SamplingFor returns the fixed sampling parameters for purpose.
func SamplingFor(p Purpose) Sampling {
	switch p {
	case PurposeExpansion:
		return Sampling{Temperature: 0.3}
	case PurposeClassification:
		return Sampling{Temperature: 0, MaxTokens: 50}
	default:
		return Sampling{Temperature: 0}
	}
}

// Purposes lists every completion purpose a provider must serve.
var Purposes = []Purpose{PurposeExpansion, PurposeClassification, PurposeSynthesis}

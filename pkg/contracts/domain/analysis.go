package domain

// Severity classifies how urgent an advisory alert is
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Alert is an advisory finding raised by an analysis engine. Alerts never
// carry errors; they annotate an otherwise successful result.
type Alert struct {
	Severity Severity `json:"severity" validate:"required,oneof=info warning danger"`
	Message  string   `json:"message" validate:"required"`
	Metric   string   `json:"metric" validate:"required"`
	Value    float64  `json:"value"`
}

// Rating is the four-tier qualitative classification used across engines
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// DebtLevel classifies balance-sheet leverage
type DebtLevel string

const (
	DebtLevelLow    DebtLevel = "Low"
	DebtLevelMedium DebtLevel = "Medium"
	DebtLevelHigh   DebtLevel = "High"
)

// ConfidenceLevel expresses how much weight a combined valuation deserves
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

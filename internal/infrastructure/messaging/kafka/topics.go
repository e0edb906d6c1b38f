package kafka

import (
	"time"

	"github.com/landgauge/landgauge/pkg/types/geo"
)

// Topic suffixes; the configured prefix is prepended on publish.
const (
	TopicAnalysisCompleted = "analysis.completed"
	TopicValuationProduced = "valuation.produced"
)

// AnalysisCompletedEvent is emitted after a property analysis finishes.
type AnalysisCompletedEvent struct {
	AnalysisID      string          `json:"analysis_id"`
	State           string          `json:"state"`
	Point           geo.Coordinates `json:"point"`
	ZoneCode        string          `json:"zone_code"`
	ZoneCategory    string          `json:"zone_category"`
	ConfidenceScore float64         `json:"confidence_score"`
	DurationMs      int64           `json:"duration_ms"`
	CompletedAt     time.Time       `json:"completed_at"`
}

// ValuationProducedEvent is emitted after a comparable sales valuation.
type ValuationProducedEvent struct {
	RequestID       string          `json:"request_id"`
	Point           geo.Coordinates `json:"point"`
	ComparableCount int             `json:"comparable_count"`
	EstimateMid     int64           `json:"estimate_mid"`
	Confidence      float64         `json:"confidence"`
	CompletedAt     time.Time       `json:"completed_at"`
}

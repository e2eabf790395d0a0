package punch

import (
	"time"
)

type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Opposite returns the other punch direction.
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

type Method string

const (
	MethodTerminal Method = "TERMINAL"
	MethodManual   Method = "MANUAL"
	MethodWeb      Method = "WEB"
)

type AnomalyType string

const (
	AnomalyDoubleIn                AnomalyType = "DOUBLE_IN"
	AnomalyMissingIn               AnomalyType = "MISSING_IN"
	AnomalyMissingOut              AnomalyType = "MISSING_OUT"
	AnomalyProbableWrongType       AnomalyType = "PROBABLE_WRONG_TYPE"
	AnomalyDebounceBlocked         AnomalyType = "DEBOUNCE_BLOCKED"
	AnomalyAutoCorrection          AnomalyType = "AUTO_CORRECTION"
	AnomalyAutoClosed              AnomalyType = "AUTO_CLOSED"
	AnomalyAutoClosedCheckOvertime AnomalyType = "AUTO_CLOSED_CHECK_OVERTIME"
)

type Punch struct {
	ID          string
	TenantID    string
	EmployeeID  string
	DeviceID    *string
	Timestamp   time.Time
	Direction   Direction
	Method      Method
	HasAnomaly  bool
	AnomalyType *AnomalyType
	AnomalyNote *string
	HoursWorked *float64

	IsCorrected    bool
	CorrectedBy    *string
	CorrectedAt    *time.Time
	CorrectionNote *string

	RawPayload []byte

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// AnomalyTypeIs reports whether the punch carries the given anomaly type.
func (p Punch) AnomalyTypeIs(t AnomalyType) bool {
	return p.AnomalyType != nil && *p.AnomalyType == t
}

// AnomalyResult is the outcome of ingestion-time anomaly detection.
// It is computed before the punch is persisted and frozen onto the record.
type AnomalyResult struct {
	HasAnomaly bool
	Type       AnomalyType
	Note       string
}

type DetectionMethod string

const (
	MethodShiftBased   DetectionMethod = "SHIFT_BASED"
	MethodContextBased DetectionMethod = "CONTEXT_BASED"
	MethodCombined     DetectionMethod = "COMBINED"
	MethodNone         DetectionMethod = "NONE"
)

// WrongTypeResult describes whether a punch's declared direction likely
// contradicts its shift window or the preceding punch sequence.
type WrongTypeResult struct {
	IsWrongType bool
	Confidence  int // 0-100
	Expected    *Direction
	Actual      Direction
	Reason      string
	Method      DetectionMethod
}

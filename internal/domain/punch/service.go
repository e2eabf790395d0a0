package punch

import (
	"context"
	"time"
)

// Service defines business logic for punch ingestion and correction.
type Service interface {
	// Record ingests a manual/web punch for the authenticated tenant.
	Record(ctx context.Context, req RecordRequest) (Response, error)

	// HandleWebhook ingests a punch pushed by a biometric terminal,
	// authenticated by the device's api key.
	HandleWebhook(ctx context.Context, tenantID, deviceID, apiKey string, req WebhookRequest) (Response, error)

	// Correct amends an existing punch. Corrected records are frozen: a second
	// correction is rejected unless the request carries the override flag.
	Correct(ctx context.Context, req CorrectRequest) (Response, error)

	Get(ctx context.Context, id string) (Response, error)

	List(ctx context.Context, filter ListFilter) (ListResponse, error)
}

// AnomalyDetector classifies a single incoming punch against that day's
// existing punches. Implementations must be side-effect free.
type AnomalyDetector interface {
	Detect(ctx context.Context, tenantID, employeeID string, ts time.Time, direction Direction) AnomalyResult
}

// WrongTypeDetector estimates whether a punch's declared direction contradicts
// the employee's shift window or the preceding punch sequence.
type WrongTypeDetector interface {
	Detect(ctx context.Context, tenantID, employeeID string, ts time.Time, declared Direction, departmentID *string) WrongTypeResult
}

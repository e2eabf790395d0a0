package device

import "time"

// Device is a registered biometric terminal. APIKeyHash is a bcrypt hash of
// the key the terminal sends on every webhook call.
type Device struct {
	ID         string
	TenantID   string
	Name       string
	APIKeyHash string
	IsActive   bool
	LastSyncAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

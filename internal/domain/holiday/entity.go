package holiday

import "time"

type Holiday struct {
	ID        string
	TenantID  string
	Name      string
	Date      time.Time // date-only, midnight in tenant tz
	CreatedAt time.Time
	UpdatedAt time.Time
}

package cron

import (
	"context"
	"time"

	"github.com/chronopoint/attendance-backend-go/internal/domain/supplementary"
	"github.com/chronopoint/attendance-backend-go/internal/service/autoclose"
)

// PunchJobs wires the orphan-session and supplementary-day batch work into
// the scheduler.
type PunchJobs struct {
	autoCloseSvc     *autoclose.Service
	supplementarySvc supplementary.Service

	missingOutInterval    time.Duration
	autoCloseInterval     time.Duration
	supplementaryInterval time.Duration
}

func NewPunchJobs(
	autoCloseSvc *autoclose.Service,
	supplementarySvc supplementary.Service,
	missingOutInterval, autoCloseInterval, supplementaryInterval time.Duration,
) *PunchJobs {
	return &PunchJobs{
		autoCloseSvc:          autoCloseSvc,
		supplementarySvc:      supplementarySvc,
		missingOutInterval:    missingOutInterval,
		autoCloseInterval:     autoCloseInterval,
		supplementaryInterval: supplementaryInterval,
	}
}

func (j *PunchJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("detect_missing_out", j.missingOutInterval, j.DetectMissingOut)
	scheduler.AddJob("auto_close_orphan_sessions", j.autoCloseInterval, j.AutoCloseOrphanSessions)
	scheduler.AddJob("detect_supplementary_days", j.supplementaryInterval, j.DetectSupplementaryDays)
}

func (j *PunchJobs) DetectMissingOut(ctx context.Context) error {
	return j.autoCloseSvc.DetectMissingOut(ctx)
}

func (j *PunchJobs) AutoCloseOrphanSessions(ctx context.Context) error {
	return j.autoCloseSvc.CloseOrphanSessions(ctx)
}

// DetectSupplementaryDays backfills supplementary days for sessions the live
// ingestion path missed, e.g. sessions closed by the auto-close batch.
func (j *PunchJobs) DetectSupplementaryDays(ctx context.Context) error {
	_, err := j.supplementarySvc.DetectMissingDaysForYesterday(ctx)
	return err
}

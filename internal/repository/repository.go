package repository

import (
	"context"
	"errors"
	"time"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Window is a closed creation-timestamp range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

type VillageRepository interface {
	AddVillage(ctx context.Context, v *models.Village) error
	GetVillage(ctx context.Context, id int64) (*models.Village, error)
	ListVillages(ctx context.Context) ([]models.Village, error)
}

// RecordRepository serves the window-bounded source fetches the aggregator
// runs per village.
type RecordRepository interface {
	AddHealthRecord(ctx context.Context, r *models.HealthRecord) error
	AddClinicRecord(ctx context.Context, r *models.ClinicRecord) error
	AddSurveyRecord(ctx context.Context, r *models.SurveyRecord) error
	HealthRecords(ctx context.Context, villageID int64, w Window) ([]models.HealthRecord, error)
	ClinicRecords(ctx context.Context, villageID int64, w Window) ([]models.ClinicRecord, error)
	SurveyRecords(ctx context.Context, villageID int64, w Window) ([]models.SurveyRecord, error)
}

type AlertRepository interface {
	AddAlert(ctx context.Context, a *models.RuleAlert) error
	GetAlert(ctx context.Context, id string) (*models.RuleAlert, error)
	ListAlerts(ctx context.Context) ([]models.RuleAlert, error)
	// LatestAlertByVillageName matches the stored village name
	// case-insensitively and returns the newest alert, or ErrNotFound.
	LatestAlertByVillageName(ctx context.Context, name string) (*models.RuleAlert, error)

	AddSummary(ctx context.Context, s *models.AlertSummary) error
	SummariesForAlert(ctx context.Context, alertID string) ([]models.AlertSummary, error)
	ListSummaries(ctx context.Context) ([]models.AlertSummary, error)
}

// AggregateStore upserts and serves the per-village dashboard snapshots.
// Upsert must apply the whole aggregate atomically: a concurrent reader sees
// either the previous snapshot or the new one, never a mix.
type AggregateStore interface {
	UpsertAggregate(ctx context.Context, a *models.VillageAggregate) error
	GetAggregate(ctx context.Context, villageID int64) (*models.VillageAggregate, error)
	ListAggregates(ctx context.Context) ([]models.VillageAggregate, error)
}

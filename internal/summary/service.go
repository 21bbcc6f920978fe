package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/swasthya/go-outbreak-alerts/internal/llm"
	"github.com/swasthya/go-outbreak-alerts/internal/models"
	"github.com/swasthya/go-outbreak-alerts/internal/repository"
	"github.com/swasthya/go-outbreak-alerts/internal/risk"
)

// Service turns rule alerts into stored narrative summaries: extract
// structured cases from the alert text, score them, have the model write
// the directive, clean its markup, persist.
type Service struct {
	alerts repository.AlertRepository
	model  llm.Client
}

func NewService(alerts repository.AlertRepository, model llm.Client) *Service {
	return &Service{
		alerts: alerts,
		model:  model,
	}
}

// ProcessAlert generates and stores one summary for the given alert. Every
// step failure (model call, schema violation, storage) is fatal for this
// alert only.
func (s *Service) ProcessAlert(ctx context.Context, alert models.RuleAlert) (*models.AlertSummary, error) {
	raw, err := s.model.GenerateJSON(ctx, extractionPrompt(alert.Text))
	if err != nil {
		return nil, fmt.Errorf("extraction call for alert %s: %w", alert.ID, err)
	}

	cases, err := parseExtraction(raw)
	if err != nil {
		return nil, fmt.Errorf("extraction output for alert %s: %w", alert.ID, err)
	}

	pct, level := risk.ScoreCases(cases)

	narrative, err := s.model.GenerateText(ctx, narrativePrompt(alert.Text, level, pct, cases))
	if err != nil {
		return nil, fmt.Errorf("narrative call for alert %s: %w", alert.ID, err)
	}

	sum := &models.AlertSummary{
		ID:             uuid.NewString(),
		AlertID:        alert.ID,
		RiskPercentage: pct,
		RiskLevel:      level,
		Text:           CleanNarrative(narrative),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.alerts.AddSummary(ctx, sum); err != nil {
		return nil, fmt.Errorf("storing summary for alert %s: %w", alert.ID, err)
	}

	return sum, nil
}

// ProcessAll walks every stored alert sequentially. One alert failing is
// recorded and skipped; the rest of the batch still runs.
func (s *Service) ProcessAll(ctx context.Context) ([]models.AlertSummary, map[string]error, error) {
	alerts, err := s.alerts.ListAlerts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing alerts: %w", err)
	}

	var summaries []models.AlertSummary
	failed := make(map[string]error)

	for _, alert := range alerts {
		sum, err := s.ProcessAlert(ctx, alert)
		if err != nil {
			slog.Error("summary generation failed", "alert_id", alert.ID, "village", alert.Village, "error", err)
			failed[alert.ID] = err
			continue
		}
		summaries = append(summaries, *sum)
		slog.Info("summary generated", "alert_id", alert.ID, "village", alert.Village, "risk_level", sum.RiskLevel)
	}

	return summaries, failed, nil
}

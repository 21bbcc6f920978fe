package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swasthya/go-outbreak-alerts/internal/aggregation"
	"github.com/swasthya/go-outbreak-alerts/internal/broadcast"
	"github.com/swasthya/go-outbreak-alerts/internal/models"
	"github.com/swasthya/go-outbreak-alerts/internal/repository"
	"github.com/swasthya/go-outbreak-alerts/internal/rules"
	"github.com/swasthya/go-outbreak-alerts/internal/summary"
)

type Handler struct {
	records      repository.RecordRepository
	alerts       repository.AlertRepository
	store        repository.AggregateStore
	orchestrator *aggregation.Orchestrator
	engine       *rules.Engine
	summaries    *summary.Service
	broadcaster  *broadcast.Broadcaster
}

func NewHandler(
	records repository.RecordRepository,
	alerts repository.AlertRepository,
	store repository.AggregateStore,
	orchestrator *aggregation.Orchestrator,
	engine *rules.Engine,
	summaries *summary.Service,
	broadcaster *broadcast.Broadcaster,
) *Handler {
	return &Handler{
		records:      records,
		alerts:       alerts,
		store:        store,
		orchestrator: orchestrator,
		engine:       engine,
		summaries:    summaries,
		broadcaster:  broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	r.GET("/api/dashboards", h.listDashboards)
	r.GET("/api/dashboards/:village_id", h.getDashboard)
	r.POST("/api/aggregate", h.runAggregation)

	r.POST("/api/reports/health", h.createHealthReport)
	r.POST("/api/alerts", h.generateAlert)

	r.POST("/api/summaries", h.generateSummaries)
	r.POST("/api/summaries/:alert_id", h.generateSummaries)
	r.GET("/api/summaries", h.listSummaries)
	r.GET("/api/summaries/:alert_id", h.getSummary)
}

func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.broadcaster != nil {
		resp["subscribers"] = h.broadcaster.SubscriberCount()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listDashboards(c *gin.Context) {
	aggs, err := h.store.ListAggregates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch dashboards"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": aggs})
}

func (h *Handler) getDashboard(c *gin.Context) {
	villageID, err := strconv.ParseInt(c.Param("village_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid village id"})
		return
	}

	agg, err := h.store.GetAggregate(c.Request.Context(), villageID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dashboard for this village"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch dashboard"})
		return
	}
	c.JSON(http.StatusOK, agg)
}

type aggregateRequest struct {
	VillageIDs []int64 `json:"village_ids"`
}

func (h *Handler) runAggregation(c *gin.Context) {
	opts := aggregation.RunOptions{MonthsBack: aggregation.DefaultMonthsBack}

	if m := c.Query("months_back"); m != "" {
		months, err := strconv.Atoi(m)
		if err != nil || months < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months_back must be a positive integer"})
			return
		}
		opts.MonthsBack = months
	}

	if c.Request.ContentLength > 0 {
		var req aggregateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		opts.VillageIDs = req.VillageIDs
	}

	report, err := h.orchestrator.Run(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation run failed"})
		return
	}

	failed := make(map[string]string, len(report.Failed))
	for id, ferr := range report.Failed {
		failed[strconv.FormatInt(id, 10)] = ferr.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"succeeded": report.Succeeded,
		"failed":    failed,
	})
}

// healthReportRequiredFields must all be present in a submitted report.
// Presence is checked key by key so the caller learns which field is missing.
var healthReportRequiredFields = []string{
	"patient_name", "age", "gender", "village_id", "symptoms",
	"severity", "date_of_reporting", "water_source",
	"treatment_given", "asha_worker_id", "state", "district", "village",
}

type healthReportRequest struct {
	PatientName     string          `json:"patient_name"`
	Age             int             `json:"age"`
	Gender          string          `json:"gender"`
	VillageID       int64           `json:"village_id"`
	Symptoms        string          `json:"symptoms"`
	Severity        models.Severity `json:"severity"`
	DateOfReporting string          `json:"date_of_reporting"`
	WaterSource     string          `json:"water_source"`
	TreatmentGiven  string          `json:"treatment_given"`
	ASHAWorkerID    int64           `json:"asha_worker_id"`
	State           string          `json:"state"`
	District        string          `json:"district"`
	Village         string          `json:"village"`
}

func (h *Handler) createHealthReport(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	for _, field := range healthReportRequiredFields {
		if _, ok := fields[field]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Missing field: %s", field)})
			return
		}
	}

	var req healthReportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	reportedOn, err := time.Parse("2006-01-02", req.DateOfReporting)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_of_reporting must be YYYY-MM-DD"})
		return
	}

	record := &models.HealthRecord{
		VillageID:      req.VillageID,
		PatientName:    req.PatientName,
		Age:            req.Age,
		Gender:         req.Gender,
		Symptoms:       req.Symptoms,
		Severity:       req.Severity,
		ReportedOn:     reportedOn,
		WaterSource:    req.WaterSource,
		TreatmentGiven: req.TreatmentGiven,
		ASHAWorkerID:   req.ASHAWorkerID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.records.AddHealthRecord(c.Request.Context(), record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store health report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Health report created successfully",
		"report_id": record.ID,
	})
}

type alertRecord struct {
	Age            int    `json:"age"`
	Symptoms       string `json:"symptoms"`
	Severity       string `json:"severity"`
	WaterSource    string `json:"water_source"`
	TreatmentGiven string `json:"treatment_given"`
	WaterQuality   string `json:"water_quality"`
}

type alertRequest struct {
	Village      string        `json:"village"`
	District     string        `json:"district"`
	State        string        `json:"state"`
	VillageID    int64         `json:"village_id"`
	ClinicID     int64         `json:"clinic_id"`
	ASHAWorkerID int64         `json:"asha_worker_id"`
	NGOID        int64         `json:"ngo_id"`
	Window       string        `json:"window"` // week, month or all
	Records      []alertRecord `json:"records"`
}

func (h *Handler) generateAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Village == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing field: village"})
		return
	}

	now := time.Now().UTC()
	batch, err := h.alertBatch(c, req, now)
	if err != nil {
		return // response already written
	}

	alert := &models.RuleAlert{
		ID:           uuid.NewString(),
		Village:      req.Village,
		District:     req.District,
		State:        req.State,
		ClinicID:     req.ClinicID,
		ASHAWorkerID: req.ASHAWorkerID,
		NGOID:        req.NGOID,
		Text:         h.engine.Generate(batch),
		CreatedAt:    now,
	}
	if err := h.alerts.AddAlert(c.Request.Context(), alert); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store alert"})
		return
	}

	c.JSON(http.StatusCreated, alert)
}

// alertBatch resolves the record batch an alert run scans: records submitted
// inline win; otherwise the village's stored health reports inside the
// requested window are used. Writes the error response itself on failure.
func (h *Handler) alertBatch(c *gin.Context, req alertRequest, now time.Time) ([]rules.Record, error) {
	if len(req.Records) > 0 {
		batch := make([]rules.Record, 0, len(req.Records))
		for _, r := range req.Records {
			batch = append(batch, rules.Record{
				Age:            r.Age,
				Symptoms:       r.Symptoms,
				Severity:       r.Severity,
				WaterSource:    r.WaterSource,
				TreatmentGiven: r.TreatmentGiven,
				WaterQuality:   r.WaterQuality,
			})
		}
		return batch, nil
	}

	if req.VillageID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either records or village_id is required"})
		return nil, errors.New("missing batch source")
	}

	window := repository.Window{End: now}
	switch req.Window {
	case "week":
		window.Start = now.AddDate(0, 0, -7)
	case "month":
		window.Start = now.AddDate(0, 0, -30)
	case "", "all":
		// zero Start leaves the window open on the left
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "window must be one of week, month, all"})
		return nil, errors.New("invalid window")
	}

	reports, err := h.records.HealthRecords(c.Request.Context(), req.VillageID, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch health reports"})
		return nil, err
	}

	batch := make([]rules.Record, 0, len(reports))
	for _, r := range reports {
		batch = append(batch, rules.Record{
			Age:            r.Age,
			Symptoms:       r.Symptoms,
			Severity:       string(r.Severity),
			WaterSource:    r.WaterSource,
			TreatmentGiven: r.TreatmentGiven,
		})
	}
	return batch, nil
}

func (h *Handler) generateSummaries(c *gin.Context) {
	ctx := c.Request.Context()

	if alertID := c.Param("alert_id"); alertID != "" {
		alert, err := h.alerts.GetAlert(ctx, alertID)
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No alerts found to process."})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alert"})
			return
		}

		sum, err := h.summaries.ProcessAlert(ctx, *alert)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Summaries generated successfully",
			"data":    []models.AlertSummary{*sum},
		})
		return
	}

	alerts, err := h.alerts.ListAlerts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}
	if len(alerts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No alerts found to process."})
		return
	}

	summaries, failed, err := h.summaries.ProcessAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	failedByAlert := make(map[string]string, len(failed))
	for id, ferr := range failed {
		failedByAlert[id] = ferr.Error()
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Summaries generated successfully",
		"data":    summaries,
		"failed":  failedByAlert,
	})
}

func (h *Handler) listSummaries(c *gin.Context) {
	summaries, err := h.alerts.ListSummaries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summaries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func (h *Handler) getSummary(c *gin.Context) {
	summaries, err := h.alerts.SummariesForAlert(c.Request.Context(), c.Param("alert_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summaries"})
		return
	}
	if len(summaries) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No summary found for this alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

package server

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/internal/analytics"
	"github.com/synthworks/tabsynth/internal/copilot"
	"github.com/synthworks/tabsynth/internal/generators"
	"github.com/synthworks/tabsynth/internal/observability/metrics"
	fileimpl "github.com/synthworks/tabsynth/internal/storage/implementations/file"
	"github.com/synthworks/tabsynth/internal/synthesis"
	"github.com/synthworks/tabsynth/pkg/constants"
	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/interfaces"
	"github.com/synthworks/tabsynth/pkg/models"
)

// Handlers holds the HTTP handlers and their dependencies. Cache is required;
// registry and copilot are optional and their endpoints degrade gracefully
// when absent.
type Handlers struct {
	logger   *logrus.Logger
	cache    interfaces.DatasetCache
	registry interfaces.DatasetRegistry
	factory  *generators.Factory
	copilot  *copilot.Service
	metrics  *metrics.PrometheusMetrics
}

// NewHandlers creates the handler set.
func NewHandlers(cache interfaces.DatasetCache, registry interfaces.DatasetRegistry,
	factory *generators.Factory, copilotSvc *copilot.Service,
	pm *metrics.PrometheusMetrics, logger *logrus.Logger) (*Handlers, error) {

	if cache == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "dataset cache is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if factory == nil {
		factory = generators.NewFactory(logger)
	}

	return &Handlers{
		logger:   logger,
		cache:    cache,
		registry: registry,
		factory:  factory,
		copilot:  copilotSvc,
		metrics:  pm,
	}, nil
}

// Health responds to liveness probes.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready responds to readiness probes, including oracle reachability when the
// copilot is configured.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"cache": "ok"}
	if _, err := h.cache.List(r.Context()); err != nil {
		checks["cache"] = "unavailable"
	}
	if h.copilot != nil {
		checks["oracle"] = "ok"
		if !h.copilot.Healthy(r.Context()) {
			checks["oracle"] = "unavailable"
		}
	}

	status := http.StatusOK
	ready := true
	if checks["cache"] != "ok" {
		status = http.StatusServiceUnavailable
		ready = false
	}

	h.writeJSON(w, status, map[string]interface{}{
		"ready":  ready,
		"checks": checks,
	})
}

// Version reports build information.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"name":    constants.AppName,
		"version": constants.AppVersion,
	})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, errors.NewAppError(errors.ErrorTypeValidation, "NOT_FOUND", "route not found").
		WithDetails(r.URL.Path))
}

// UploadDataset accepts a multipart CSV upload and caches it under a fresh
// dataset ID.
func (h *Handlers) UploadDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		h.writeError(w, errors.NewValidationError(errors.CodeInvalidInput, "failed to parse multipart form").
			WithDetails(err.Error()))
		return
	}

	uploaded, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, errors.NewValidationError(errors.CodeMissingField, "missing 'file' form field"))
		return
	}
	defer uploaded.Close()

	records, err := csv.NewReader(uploaded).ReadAll()
	if err != nil {
		h.writeError(w, errors.NewValidationError(errors.CodeInvalidFormat, "failed to parse CSV").
			WithDetails(err.Error()))
		return
	}

	name := strings.TrimSuffix(header.Filename, ".csv")
	dataset, err := fileimpl.ParseCSV(name, records)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.cache.Put(r.Context(), dataset, 0); err != nil {
		h.writeError(w, err)
		return
	}

	if h.registry != nil {
		record := &interfaces.DatasetRecord{
			ID:         dataset.ID,
			Name:       dataset.Name,
			Path:       header.Filename,
			RowCount:   dataset.RowCount(),
			UploadedAt: time.Now(),
		}
		if err := h.registry.RegisterDataset(r.Context(), record); err != nil {
			h.logger.WithError(err).Warn("Failed to register uploaded dataset")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"dataset_id": dataset.ID,
		"name":       dataset.Name,
		"rows":       dataset.RowCount(),
	}).Info("Dataset uploaded")

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"dataset_id": dataset.ID,
		"name":       dataset.Name,
		"columns":    dataset.Columns,
		"row_count":  dataset.RowCount(),
	})
}

// ListDatasets returns the IDs of cached datasets.
func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ids, err := h.cache.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"datasets": ids})
}

// GetDatasetStats returns descriptive statistics for a cached dataset.
func (h *Handlers) GetDatasetStats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	dataset, err := h.cache.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analytics.Describe(dataset))
}

// DeleteDataset removes a dataset from the cache and registry.
func (h *Handlers) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.cache.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	if h.registry != nil {
		if err := h.registry.DeleteDataset(r.Context(), id); err != nil {
			h.logger.WithError(err).WithField("dataset_id", id).Warn("Failed to delete registry record")
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"dataset_id": id, "status": "deleted"})
}

// ListSynthesizers returns the registered synthesizer types.
func (h *Handlers) ListSynthesizers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"synthesizers": h.factory.AvailableSynthesizers(),
	})
}

type generateAPIRequest struct {
	DatasetID   string               `json:"dataset_id,omitempty"`
	Synthesizer string               `json:"synthesizer,omitempty"`
	ModelPath   string               `json:"model_path,omitempty"`
	TargetCount int                  `json:"target_count"`
	MaxAttempts int                  `json:"max_attempts,omitempty"`
	Anomalies   []models.AnomalyRule `json:"anomalies,omitempty"`
}

type generateAPIResponse struct {
	*models.GenerationResult
	Rows []models.Row `json:"rows"`
}

// Generate runs a synthesis request. The model is either loaded from
// model_path or fitted on the referenced cached dataset, which also serves as
// the leakage-protection reference.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var apiReq generateAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
		h.writeError(w, errors.NewValidationError(errors.CodeInvalidInput, "invalid request body").
			WithDetails(err.Error()))
		return
	}

	if apiReq.Synthesizer == "" {
		apiReq.Synthesizer = generators.TypeStatistical
	}
	if apiReq.ModelPath == "" && apiReq.DatasetID == "" {
		h.writeError(w, errors.NewValidationError(errors.CodeMissingField,
			"either model_path or dataset_id is required"))
		return
	}

	synth, err := h.factory.CreateSynthesizer(apiReq.Synthesizer)
	if err != nil {
		h.writeError(w, errors.NewValidationError(errors.CodeInvalidInput, err.Error()))
		return
	}
	defer synth.Close()

	var original *models.Dataset
	if apiReq.DatasetID != "" {
		original, err = h.cache.Get(r.Context(), apiReq.DatasetID)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	if apiReq.ModelPath != "" {
		if err := synth.Load(apiReq.ModelPath); err != nil {
			h.writeError(w, err)
			return
		}
	} else {
		if err := synth.Fit(r.Context(), original); err != nil {
			h.writeError(w, err)
			return
		}
	}

	pipeline, err := synthesis.NewPipeline(synth,
		&synthesis.PipelineConfig{MaxAttempts: apiReq.MaxAttempts}, h.logger, h.metrics)
	if err != nil {
		h.writeError(w, err)
		return
	}

	req := &models.GenerationRequest{
		ID:          getRequestID(r),
		TargetCount: apiReq.TargetCount,
		MaxAttempts: apiReq.MaxAttempts,
		Rules:       apiReq.Anomalies,
		Original:    original,
		CreatedAt:   time.Now(),
	}

	result, runErr := pipeline.Run(r.Context(), req)
	if result == nil {
		h.writeError(w, runErr)
		return
	}

	status := http.StatusOK
	if result.Status == models.StatusFailed {
		status = http.StatusInternalServerError
	}
	h.writeJSON(w, status, &generateAPIResponse{GenerationResult: result, Rows: result.Rows})
}

type copilotAskRequest struct {
	DatasetID string `json:"dataset_id,omitempty"`
	Question  string `json:"question"`
}

// CopilotAsk answers a natural-language question about a cached dataset.
func (h *Handlers) CopilotAsk(w http.ResponseWriter, r *http.Request) {
	if h.copilot == nil {
		h.writeError(w, errors.NewAppError(errors.ErrorTypeConfiguration, errors.CodeNotImplemented,
			"copilot is not configured"))
		return
	}

	var req copilotAskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.NewValidationError(errors.CodeInvalidInput, "invalid request body").
			WithDetails(err.Error()))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		h.writeError(w, errors.NewValidationError(errors.CodeMissingField, "question cannot be empty"))
		return
	}

	answer, err := h.copilot.Ask(r.Context(), req.DatasetID, req.Question)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"dataset_id": req.DatasetID,
		"answer":     answer,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.NewInternalError(err.Error())
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(appErr.HTTPStatus)
	if encodeErr := json.NewEncoder(w).Encode(&errors.ErrorResponse{
		Error:     appErr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}); encodeErr != nil {
		h.logger.WithError(encodeErr).Error("Failed to encode error response")
	}
}

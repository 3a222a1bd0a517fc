package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"cardioscore/db"
	"cardioscore/ml"
)

// Handlers serves the inference API over a registry that is built once at
// startup and never mutated.
type Handlers struct {
	registry *ml.Registry
	schema   ml.FeatureSchema
	ranges   map[string]ml.FeatureRange
	logger   *zap.Logger
	cache    *responseCache
	hub      *Hub
	audit    bool
}

func NewHandlers(registry *ml.Registry, logger *zap.Logger, cacheSize int, audit bool) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		schema:   ml.HeartFeatureNames(),
		ranges:   ml.HeartFeatureRanges(),
		logger:   logger,
		cache:    newResponseCache(cacheSize),
		hub:      NewHub(logger),
		audit:    audit,
	}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/models", h.handleModels)
	mux.HandleFunc("POST /api/predictions", h.handlePredictions)
	mux.HandleFunc("GET /api/predictions/recent", h.handleRecentPredictions)
	mux.HandleFunc("GET /api/ws/predictions", h.hub.HandleWS)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type modelInfo struct {
	Name                  string             `json:"name"`
	Metrics               map[string]float64 `json:"metrics"`
	SupportsProbabilities bool               `json:"supports_probabilities"`
}

func (h *Handlers) handleModels(w http.ResponseWriter, r *http.Request) {
	models := make([]modelInfo, 0, h.registry.Len())
	for _, model := range h.registry.Models() {
		models = append(models, modelInfo{
			Name:                  model.Name(),
			Metrics:               model.Metrics(),
			SupportsProbabilities: model.SupportsProbabilities(),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"feature_order": h.schema.Names(),
		"models":        models,
	})
}

type predictRequest struct {
	Records ml.RawInput `json:"records"`
}

type modelPredictions struct {
	Model       string             `json:"model"`
	Metrics     map[string]float64 `json:"metrics"`
	Predictions []ml.Detail        `json:"predictions"`
}

func (h *Handlers) handlePredictions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	key := cacheKey(body)
	if cached, ok := h.cache.get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.Write(cached)
		return
	}

	var req predictRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ml.ValidateRanges(req.Records, h.schema, h.ranges); err != nil {
		h.respondPredictionError(w, err)
		return
	}

	payload := make([]modelPredictions, 0, h.registry.Len())
	for _, model := range h.registry.Models() {
		details, err := model.PredictWithDetails(req.Records)
		if err != nil {
			h.respondPredictionError(w, err)
			return
		}

		if h.audit {
			if err := db.SavePredictions(model.Name(), details); err != nil {
				h.logger.Warn("failed to audit predictions",
					zap.String("model", model.Name()), zap.Error(err))
			}
		}
		h.hub.Publish(PredictionEvent{
			Model:     model.Name(),
			Count:     len(details),
			Timestamp: time.Now().UTC(),
		})

		payload = append(payload, modelPredictions{
			Model:       model.Name(),
			Metrics:     model.Metrics(),
			Predictions: details,
		})
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode predictions", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.put(key, encoded)

	w.Header().Set("Content-Type", "application/json")
	w.Write(encoded)
}

func (h *Handlers) respondPredictionError(w http.ResponseWriter, err error) {
	if ml.IsValidationError(err) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.logger.Error("prediction failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handlers) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	if !h.audit {
		respondError(w, http.StatusServiceUnavailable, "prediction audit log is disabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := db.QueryRecentPredictions(limit)
	if err != nil {
		h.logger.Error("failed to query prediction audit log", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": records,
		"count":       len(records),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

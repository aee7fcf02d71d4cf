package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/openrewards/cardperk/internal/catalog"
	"github.com/openrewards/cardperk/internal/domain"
	"github.com/openrewards/cardperk/internal/promo"
	"github.com/openrewards/cardperk/internal/rewards"
	"github.com/openrewards/cardperk/internal/spending"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo         domain.Repository
	cache        domain.Cache
	bus          domain.EventBus
	registry     *catalog.Registry
	processor    *rewards.Processor
	promoEngine  *promo.Engine
	spendTracker *spending.Service
	version      string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, registry *catalog.Registry, processor *rewards.Processor, promoEngine *promo.Engine, spendTracker *spending.Service, version string) *Handler {
	return &Handler{
		repo:         repo,
		cache:        cache,
		bus:          bus,
		registry:     registry,
		processor:    processor,
		promoEngine:  promoEngine,
		spendTracker: spendTracker,
		version:      version,
	}
}

// SpendRequest is the request body for POST /evaluate.
type SpendRequest struct {
	ProductID string         `json:"productId"`
	Amount    float64        `json:"amount"`
	MCC       string         `json:"mcc,omitempty"`
	Answers   domain.Answers `json:"answers,omitempty"`
}

// EvaluateResponse is the response for POST /evaluate.
type EvaluateResponse struct {
	EvaluationID string               `json:"evaluationId"`
	SpendID      string               `json:"spendId"`
	ProductID    string               `json:"productId"`
	CardType     domain.CardType      `json:"cardType"`
	Reward       domain.CappedReward  `json:"reward"`
	Promos       []domain.PromoResult `json:"promos,omitempty"`
	Metadata     struct {
		TraceID  string `json:"traceId"`
		IngestMs int64  `json:"ingestMs"`
		TotalMs  int64  `json:"totalMs"`
		Version  string `json:"version"`
	} `json:"metadata"`
}

// Evaluate handles POST /evaluate requests.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)

	// Parse request
	var req SpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate required fields
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "productId is required",
		})
		return
	}
	if req.Amount < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amount must be non-negative",
		})
		return
	}

	product, err := h.registry.Lookup(req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": fmt.Sprintf("unknown product: %s", req.ProductID),
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "product lookup failed",
		})
		return
	}

	// Tiered products default annualSpend from recorded history when the
	// caller does not answer it. Explicit answers always win.
	if product.Kind == domain.KindTiered && h.spendTracker != nil && !req.Answers.Has(domain.AnswerAnnualSpend) {
		annual, err := h.spendTracker.GetPeriodSpend(ctx, tenantID, req.ProductID, spending.YearWindowSecs)
		if err != nil {
			slog.Debug("annual spend lookup failed", "product", req.ProductID, "error", err)
		} else if annual > 0 {
			if req.Answers == nil {
				req.Answers = domain.Answers{}
			}
			req.Answers[domain.AnswerAnnualSpend] = annual
		}
	}

	spendID := uuid.New().String()
	ingestMs := time.Since(start).Milliseconds()

	// Record the spend
	spend := &domain.SpendRecord{
		ID:        spendID,
		TenantID:  tenantID,
		ProductID: req.ProductID,
		Amount:    req.Amount,
		MCC:       req.MCC,
		Answers:   req.Answers,
		Timestamp: time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}

	if h.repo != nil {
		if err := h.repo.SaveSpend(ctx, tenantID, spend); err != nil {
			slog.Error("failed to save spend", "error", err)
			// Evaluation still proceeds; persistence is best effort here.
		}
	}

	// Synchronous evaluation (Community tier / direct mode)
	input := &rewards.ProcessInput{
		TenantID:  tenantID,
		SpendID:   spendID,
		TraceID:   traceID,
		Input:     spend.Input(),
		StartTime: start,
	}

	evaluation, err := h.processor.Process(ctx, input)
	if err != nil {
		slog.Error("evaluation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "evaluation failed",
		})
		return
	}

	// Promo rules see the core reward outcome
	if h.promoEngine != nil && h.promoEngine.RulesCount() > 0 {
		promoResults, err := h.promoEngine.EvaluateAll(ctx, &promo.EvaluateInput{
			TenantID:  tenantID,
			SpendID:   spendID,
			ProductID: req.ProductID,
			CardType:  string(product.CardType),
			Amount:    req.Amount,
			MCC:       req.MCC,
			Quantity:  evaluation.Reward.Quantity,
			RateType:  evaluation.Reward.RateType,
			Category:  evaluation.Reward.Category,
		})
		if err != nil {
			slog.Error("promo evaluation failed", "error", err)
		} else {
			evaluation.Promos = promoResults
		}
	}

	if h.repo != nil {
		if err := h.repo.SaveEvaluation(ctx, tenantID, evaluation); err != nil {
			slog.Error("failed to save evaluation", "error", err)
		}
	}

	if h.cache != nil {
		_ = h.cache.SetReward(ctx, tenantID, spendFingerprint(&req), &domain.RewardCache{
			ProductID:  req.ProductID,
			Quantity:   evaluation.Reward.Quantity,
			RewardText: evaluation.Reward.RewardText,
			RateType:   evaluation.Reward.RateType,
			Category:   evaluation.Reward.Category,
			Timestamp:  evaluation.Timestamp.Format(time.RFC3339),
		}, 5*time.Minute)
	}

	h.publishEvaluation(r, tenantID, evaluation)

	totalMs := time.Since(start).Milliseconds()

	resp := EvaluateResponse{
		EvaluationID: evaluation.ID,
		SpendID:      spendID,
		ProductID:    evaluation.ProductID,
		CardType:     evaluation.CardType,
		Reward:       evaluation.Reward,
		Promos:       evaluation.Promos,
	}
	resp.Metadata.TraceID = traceID
	resp.Metadata.IngestMs = ingestMs
	resp.Metadata.TotalMs = totalMs
	resp.Metadata.Version = h.version

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) publishEvaluation(r *http.Request, tenantID string, evaluation *domain.Evaluation) {
	if h.bus == nil {
		return
	}
	ctx := r.Context()

	payload, err := json.Marshal(evaluation)
	if err != nil {
		return
	}
	if err := h.bus.Publish(ctx, tenantID, domain.TopicEvaluationCompleted, payload); err != nil {
		slog.Warn("failed to publish evaluation", "error", err)
	}
	if evaluation.Reward.AppliedCap != nil {
		if err := h.bus.Publish(ctx, tenantID, domain.TopicCapApplied, payload); err != nil {
			slog.Warn("failed to publish cap event", "error", err)
		}
	}
}

// spendFingerprint keys the reward cache. encoding/json sorts map keys, so
// identical answer sets produce identical fingerprints.
func spendFingerprint(req *SpendRequest) string {
	answers, _ := json.Marshal(req.Answers)
	return fmt.Sprintf("%s:%.2f:%s:%s", req.ProductID, req.Amount, req.MCC, answers)
}

// CardsRequest is the request body for POST /evaluate/cards: one spend
// evaluated against several products at once.
type CardsRequest struct {
	Amount     float64        `json:"amount"`
	MCC        string         `json:"mcc,omitempty"`
	Answers    domain.Answers `json:"answers,omitempty"`
	ProductIDs []string       `json:"productIds,omitempty"` // empty = whole catalog
}

// CardReward is one product's outcome in a multi-card evaluation.
type CardReward struct {
	ProductID   string              `json:"productId"`
	ProductName string              `json:"productName"`
	CardType    domain.CardType     `json:"cardType"`
	Reward      domain.CappedReward `json:"reward"`
}

// EvaluateCards handles POST /evaluate/cards. Results follow catalog order;
// no ranking is applied.
func (h *Handler) EvaluateCards(w http.ResponseWriter, r *http.Request) {
	var req CardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.Amount < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amount must be non-negative",
		})
		return
	}

	var products []*domain.Product
	if len(req.ProductIDs) == 0 {
		products = h.registry.List()
	} else {
		for _, id := range req.ProductIDs {
			p, err := h.registry.Lookup(id)
			if err != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{
					"error": fmt.Sprintf("unknown product: %s", id),
				})
				return
			}
			products = append(products, p)
		}
	}

	results := make([]CardReward, 0, len(products))
	for _, p := range products {
		ans := rewards.MergeDerived(req.Answers, rewards.DeriveDefaults(p, req.MCC))
		ans = rewards.ExpandAnswers(p, ans)
		raw := rewards.EvaluateProduct(p, req.Amount, req.MCC, ans)
		capped := rewards.ApplyCap(p, raw)

		results = append(results, CardReward{
			ProductID:   p.ID,
			ProductName: p.Name,
			CardType:    p.CardType,
			Reward:      *capped,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cards": results,
		"count": len(results),
	})
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// ListProducts returns the product catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.registry.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct retrieves a product definition by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	if productID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "product id is required",
		})
		return
	}

	product, err := h.registry.Lookup(productID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "product not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// QuestionsRequest is the request body for POST /products/{id}/questions.
type QuestionsRequest struct {
	MCC     string         `json:"mcc,omitempty"`
	Answers domain.Answers `json:"answers,omitempty"`
}

// ProductQuestions resolves the contextual questions for one product given
// the current answers.
func (h *Handler) ProductQuestions(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	if productID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "product id is required",
		})
		return
	}

	product, err := h.registry.Lookup(productID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "product not found",
		})
		return
	}

	var req QuestionsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid JSON request body",
			})
			return
		}
	}

	questions := rewards.QuestionsFor(product, req.MCC, req.Answers)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"productId": productID,
		"questions": questions,
		"count":     len(questions),
	})
}

// GetEvaluation retrieves an evaluation by ID.
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	evalID := chi.URLParam(r, "id")

	if evalID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "evaluation id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	eval, err := h.repo.GetEvaluation(ctx, tenantID, evalID)
	if err != nil {
		slog.Error("failed to get evaluation", "id", evalID, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "evaluation not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, eval)
}

// GetSpend retrieves a spend record by ID.
func (h *Handler) GetSpend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	spendID := chi.URLParam(r, "id")

	if spendID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "spend id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	spend, err := h.repo.GetSpend(ctx, tenantID, spendID)
	if err != nil {
		slog.Error("failed to get spend", "id", spendID, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "spend not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, spend)
}

// ListPromos returns all promo rules loaded in the engine.
// Rules are loaded from the database at startup and can be reloaded via POST /promos/reload.
func (h *Handler) ListPromos(w http.ResponseWriter, r *http.Request) {
	if h.promoEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "promo engine not available",
		})
		return
	}

	loaded := h.promoEngine.GetLoadedRules()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"promos": loaded,
		"count":  len(loaded),
		"source": "database",
	})
}

// GetPromo retrieves a promo rule by ID from the loaded engine rules.
func (h *Handler) GetPromo(w http.ResponseWriter, r *http.Request) {
	promoID := chi.URLParam(r, "id")

	if promoID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "promo id is required",
		})
		return
	}

	if h.promoEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "promo engine not available",
		})
		return
	}

	for _, rule := range h.promoEngine.GetLoadedRules() {
		if rule.ID == promoID {
			writeJSON(w, http.StatusOK, rule)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "promo not found",
	})
}

// CreatePromoRequest is the request body for creating a promo rule.
type CreatePromoRequest struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Expression  string             `json:"expression"`
	Tiers       []domain.PromoTier `json:"tiers"`
	Enabled     bool               `json:"enabled"`
}

// GlobalTenantID is used for promo rules that apply to all tenants.
const GlobalTenantID = "*"

// CreatePromo creates a new promo rule and saves it to the database.
// Rules are saved globally (tenant_id = "*") so they apply to all tenants.
// After saving, call POST /promos/reload to hot-reload into the engine.
func (h *Handler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate
	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}

	rule := &domain.PromoRule{
		ID:          req.ID,
		TenantID:    GlobalTenantID,
		Name:        req.Name,
		Description: req.Description,
		Version:     "1.0.0",
		Expression:  req.Expression,
		Tiers:       req.Tiers,
		Enabled:     req.Enabled,
	}

	// Validate CEL expression by attempting to load
	if err := h.promoEngine.LoadRule(rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	// Persist to repository (global tenant ID)
	if h.repo != nil {
		if err := h.repo.SavePromoRule(ctx, GlobalTenantID, rule); err != nil {
			slog.Error("failed to save promo rule", "id", rule.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save promo",
			})
			return
		}
	}

	slog.Info("promo created", "id", rule.ID, "name", rule.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"promo":   rule,
		"message": "Promo created. Call POST /promos/reload to apply changes.",
	})
}

// DeletePromo deletes a promo rule and auto-reloads the engine.
func (h *Handler) DeletePromo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	promoID := chi.URLParam(r, "id")

	if promoID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "promo id is required",
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.DeletePromoRule(ctx, GlobalTenantID, promoID); err != nil {
			slog.Error("failed to delete promo", "id", promoID, "error", err)
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "promo not found",
			})
			return
		}

		// Auto-reload engine after delete
		if h.promoEngine != nil {
			dbRules, err := h.repo.ListPromoRules(ctx, GlobalTenantID)
			if err != nil {
				slog.Error("failed to reload promos after delete", "error", err)
			} else if err := h.promoEngine.ReloadRules(dbRules); err != nil {
				slog.Error("failed to reload promo engine after delete", "error", err)
			} else {
				slog.Info("promos auto-reloaded after delete", "count", len(dbRules))
			}
		}
	}

	slog.Info("promo deleted", "id", promoID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Promo deleted and engine reloaded.",
	})
}

// ReloadPromos reloads all promo rules from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadPromos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	if h.promoEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "promo engine not available",
		})
		return
	}

	// Load rules from database (global rules)
	dbRules, err := h.repo.ListPromoRules(ctx, GlobalTenantID)
	if err != nil {
		slog.Error("failed to list promos from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load promos from database",
		})
		return
	}

	// Reload into engine
	if err := h.promoEngine.ReloadRules(dbRules); err != nil {
		slog.Error("failed to reload promos into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload promos: " + err.Error(),
		})
		return
	}

	slog.Info("promos reloaded from database", "count", len(dbRules))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "promos reloaded successfully",
		"count":   len(dbRules),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Package worker provides async spend processing for the Pro tier.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/openrewards/cardperk/internal/domain"
	"github.com/openrewards/cardperk/internal/promo"
	"github.com/openrewards/cardperk/internal/rewards"
)

// Worker evaluates spends asynchronously from the EventBus.
type Worker struct {
	bus         domain.EventBus
	repo        domain.Repository
	processor   *rewards.Processor
	promoEngine *promo.Engine

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// TenantIDs is the list of tenants to process (empty = all via wildcard if supported)
	TenantIDs []string

	// WorkerCount is the number of concurrent workers per tenant
	WorkerCount int
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, processor *rewards.Processor, promoEngine *promo.Engine) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:         bus,
		repo:        repo,
		processor:   processor,
		promoEngine: promoEngine,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins processing messages for the given tenants.
func (w *Worker) Start(cfg Config) error {
	if len(cfg.TenantIDs) == 0 {
		return w.startGlobalWorker()
	}

	for _, tenantID := range cfg.TenantIDs {
		if err := w.startTenantWorker(tenantID); err != nil {
			slog.Error("failed to start worker for tenant",
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"tenant_count", len(cfg.TenantIDs),
	)

	return nil
}

// startGlobalWorker starts a worker that processes all tenants (for testing/dev).
func (w *Worker) startGlobalWorker() error {
	// Subscribe using a special "global" tenant ID
	// In production, you'd want to subscribe with wildcards or JetStream
	sub, err := w.bus.Subscribe(w.ctx, "_global", domain.TopicSpendReceived, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("global worker started")
	return nil
}

// startTenantWorker starts workers for a specific tenant.
func (w *Worker) startTenantWorker(tenantID string) error {
	sub, err := w.bus.Subscribe(w.ctx, tenantID, domain.TopicSpendReceived, func(ctx context.Context, msg *domain.Message) error {
		return w.processSpend(ctx, tenantID, msg)
	})
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("tenant worker started",
		"tenant_id", tenantID,
		"topic", domain.TopicSpendReceived,
	)

	return nil
}

// handleMessage handles messages from global subscription.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	return w.processSpend(ctx, msg.TenantID, msg)
}

// SpendMessage is the message payload for async spend processing.
type SpendMessage struct {
	SpendID   string         `json:"spendId"`
	TenantID  string         `json:"tenantId"`
	TraceID   string         `json:"traceId"`
	ProductID string         `json:"productId"`
	Amount    float64        `json:"amount"`
	MCC       string         `json:"mcc,omitempty"`
	Answers   domain.Answers `json:"answers,omitempty"`
}

// processSpend evaluates a spend through the pipeline.
func (w *Worker) processSpend(ctx context.Context, tenantID string, msg *domain.Message) error {
	start := time.Now()

	// Parse message
	var spendMsg SpendMessage
	if err := json.Unmarshal(msg.Payload, &spendMsg); err != nil {
		slog.Error("failed to parse spend message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	// Use message tenant if provided
	if spendMsg.TenantID != "" {
		tenantID = spendMsg.TenantID
	}

	traceID := spendMsg.TraceID
	if traceID == "" {
		traceID = msg.ID
	}

	slog.Debug("processing spend",
		"spend_id", spendMsg.SpendID,
		"tenant_id", tenantID,
		"trace_id", traceID,
	)

	input := &rewards.ProcessInput{
		TenantID: tenantID,
		SpendID:  spendMsg.SpendID,
		TraceID:  traceID,
		Input: &domain.SpendInput{
			ProductID: spendMsg.ProductID,
			Amount:    spendMsg.Amount,
			MCC:       spendMsg.MCC,
			Answers:   spendMsg.Answers,
		},
		StartTime: start,
	}

	evaluation, err := w.processor.Process(ctx, input)
	if err != nil {
		slog.Error("spend evaluation failed",
			"spend_id", spendMsg.SpendID,
			"error", err,
		)
		return err
	}

	// Promo rules run against the core reward outcome
	if w.promoEngine != nil && w.promoEngine.RulesCount() > 0 {
		promoResults, err := w.promoEngine.EvaluateAll(ctx, &promo.EvaluateInput{
			TenantID:  tenantID,
			SpendID:   spendMsg.SpendID,
			ProductID: spendMsg.ProductID,
			CardType:  string(evaluation.CardType),
			Amount:    spendMsg.Amount,
			MCC:       spendMsg.MCC,
			Quantity:  evaluation.Reward.Quantity,
			RateType:  evaluation.Reward.RateType,
			Category:  evaluation.Reward.Category,
		})
		if err != nil {
			slog.Error("promo evaluation failed",
				"spend_id", spendMsg.SpendID,
				"error", err,
			)
		} else {
			evaluation.Promos = promoResults
		}
	}

	if w.repo != nil {
		if err := w.repo.SaveEvaluation(ctx, tenantID, evaluation); err != nil {
			slog.Error("failed to save evaluation",
				"spend_id", spendMsg.SpendID,
				"error", err,
			)
		}
	}

	resultPayload, _ := json.Marshal(evaluation)
	if err := w.bus.Publish(ctx, tenantID, domain.TopicEvaluationCompleted, resultPayload); err != nil {
		slog.Error("failed to publish evaluation",
			"spend_id", spendMsg.SpendID,
			"error", err,
		)
	}

	// Capped rewards get their own topic for downstream alerting
	if evaluation.Reward.AppliedCap != nil {
		if err := w.bus.Publish(ctx, tenantID, domain.TopicCapApplied, resultPayload); err != nil {
			slog.Error("failed to publish cap event",
				"spend_id", spendMsg.SpendID,
				"error", err,
			)
		}
	}

	slog.Info("spend processed",
		"spend_id", spendMsg.SpendID,
		"tenant_id", tenantID,
		"product_id", evaluation.ProductID,
		"quantity", evaluation.Reward.Quantity,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() error {
	w.cancel()

	// Unsubscribe all
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}

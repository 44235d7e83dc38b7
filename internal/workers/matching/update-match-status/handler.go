// internal/workers/matching/update-match-status/handler.go
package updatematchstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/matching"
	"dealflow-workers/internal/models"
	"dealflow-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "update-match-status"
)

var (
	ErrInvalidInput          = errors.New("INVALID_INPUT")
	ErrInvalidInvestedAmount = errors.New("INVALID_INVESTED_AMOUNT")
	ErrConversationFailed    = errors.New("CONVERSATION_FAILED")
)

type Handler struct {
	config        *Config
	db            *sql.DB
	logger        logger.Logger
	matches       *store.MatchStore
	conversations *store.ConversationStore
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config:        config,
		db:            db,
		logger:        log.WithFields(map[string]interface{}{"taskType": TaskType}),
		matches:       store.NewMatchStore(db),
		conversations: store.NewConversationStore(db),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, errorCode(err), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, matching.ErrInvalidTransition):
		return "INVALID_STATUS_ACTION"
	case errors.Is(err, ErrInvalidInvestedAmount):
		return "INVALID_INVESTED_AMOUNT"
	case errors.Is(err, ErrConversationFailed):
		return "CONVERSATION_FAILED"
	case errors.Is(err, store.ErrNotFound):
		return "MATCH_NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		return "PARSE_ERROR"
	default:
		return "MATCH_UPSERT_FAILED"
	}
}

// validate checks the input against the activity's published schema.
// Field-level failures map onto the domain error for that field.
func (h *Handler) validate(input *Input) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(inputSchema),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if result.Valid() {
		return nil
	}

	for _, desc := range result.Errors() {
		if strings.Contains(desc.Field(), "investedAmount") {
			return fmt.Errorf("%w: %s", ErrInvalidInvestedAmount, desc.String())
		}
		if strings.Contains(desc.Field(), "action") {
			return fmt.Errorf("%w: %s", matching.ErrInvalidTransition, desc.String())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, result.Errors()[0].String())
}

// execute applies one status action atomically: the row lock, the
// transition check, the status write and the conversation side effect
// all share a transaction, so a decline can never leave an orphaned
// conversation behind.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.validate(input); err != nil {
		return nil, err
	}
	action := models.MatchStatus(input.Action)

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	match, err := h.matches.GetForUpdateTx(ctx, tx, input.FounderID, input.InvestorID)
	if errors.Is(err, store.ErrNotFound) {
		// A direct save or interest may arrive before any batch run has
		// scored the pair. Start the relationship from a blank row; a
		// later rescore backfills score and reason.
		if !matching.IsCreatingAction(action) {
			return nil, err
		}
		match, err = h.matches.InsertManualTx(ctx, tx, input.FounderID, input.InvestorID, models.StatusNew)
	}
	if err != nil {
		return nil, err
	}

	outcome, err := matching.Transition(match.Status, action)
	if err != nil {
		return nil, err
	}

	output := &Output{
		FounderID:      input.FounderID,
		InvestorID:     input.InvestorID,
		PreviousStatus: outcome.From,
		Status:         outcome.To,
	}

	if outcome.NoOp {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit transaction: %w", err)
		}
		return output, nil
	}

	var investedAmount *decimal.Decimal
	var investedAt *time.Time
	if outcome.RecordInvestment {
		if input.InvestedAmount == nil {
			return nil, fmt.Errorf("%w: invested action requires investedAmount", ErrInvalidInvestedAmount)
		}
		amount := decimal.NewFromFloat(*input.InvestedAmount)
		now := time.Now().UTC()
		investedAmount, investedAt = &amount, &now
	}

	if _, err := h.matches.UpdateStatusTx(ctx, tx, input.FounderID, input.InvestorID, outcome.To, investedAmount, investedAt); err != nil {
		return nil, err
	}

	if outcome.CreateConversation {
		conversationID, err := h.conversations.GetOrCreateTx(ctx, tx, input.FounderID, input.InvestorID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversationFailed, err)
		}
		output.ConversationID = conversationID
	}
	if outcome.DeleteConversation {
		if err := h.conversations.DeleteTx(ctx, tx, input.FounderID, input.InvestorID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversationFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	metrics.StatusTransitions.WithLabelValues(string(outcome.From), string(outcome.To)).Inc()

	h.logger.Info("match status updated", map[string]interface{}{
		"founderId":  input.FounderID,
		"investorId": input.InvestorID,
		"from":       string(outcome.From),
		"to":         string(outcome.To),
	})

	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

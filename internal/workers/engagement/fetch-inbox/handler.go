// internal/workers/engagement/fetch-inbox/handler.go
package fetchinbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/models"
	"dealflow-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "fetch-inbox"

var (
	ErrInboxFetchFailed = errors.New("INBOX_FETCH_FAILED")
	ErrUnknownRole      = errors.New("UNKNOWN_ROLE")
)

type Handler struct {
	config        *Config
	db            *sql.DB
	logger        logger.Logger
	conversations *store.ConversationStore
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config:        config,
		db:            db,
		logger:        log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		if errors.Is(err, ErrUnknownRole) {
			h.failJob(client, job, "PARSE_ERROR", err.Error())
			return
		}
		h.failJob(client, job, "INBOX_FETCH_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Role != RoleFounder && input.Role != RoleInvestor {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, input.Role)
	}

	// Mark-read happens first so the listed unread counts match what
	// the caller is about to display.
	if input.MarkReadConversationID != "" {
		if err := h.conversations.MarkRead(ctx, input.MarkReadConversationID, input.UserID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInboxFetchFailed, err)
		}
	}

	var entries []models.InboxEntry
	var err error
	if input.Role == RoleFounder {
		entries, err = h.conversations.ListForFounder(ctx, input.UserID)
	} else {
		entries, err = h.conversations.ListForInvestor(ctx, input.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInboxFetchFailed, err)
	}

	totalUnread := 0
	for _, e := range entries {
		totalUnread += e.UnreadCount
	}

	h.logger.Info("inbox fetched", map[string]interface{}{
		"userId":        input.UserID,
		"role":          input.Role,
		"conversations": len(entries),
		"totalUnread":   totalUnread,
	})

	return &Output{Entries: entries, TotalUnread: totalUnread}, nil
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

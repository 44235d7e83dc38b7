// internal/workers/analytics/compute-traction-kpis/handler.go
package computetractionkpis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/matching"
	"dealflow-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/shopspring/decimal"
)

const TaskType = "compute-traction-kpis"

var (
	ErrTractionQueryFailed = errors.New("TRACTION_QUERY_FAILED")
)

type Handler struct {
	config   *Config
	db       *sql.DB
	logger   logger.Logger
	founders *store.FounderStore
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		db:       db,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
		founders: store.NewFounderStore(db),
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
		h.failJob(client, job, "TRACTION_QUERY_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute derives the traction dashboard for one founder. A founder
// with no reported periods gets all-zero KPIs; missing traction
// degrades, it never errors.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	metrics, err := h.founders.LatestTraction(ctx, input.FounderID, h.config.Periods)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTractionQueryFailed, err)
	}

	cashOnHand := decimal.Zero
	if input.CashOnHand != nil {
		cashOnHand = decimal.NewFromFloat(*input.CashOnHand)
	}

	kpis := matching.ComputeKPIs(metrics, cashOnHand)

	h.logger.Info("traction kpis computed", map[string]interface{}{
		"founderId":  input.FounderID,
		"periods":    len(metrics),
		"mrr":        kpis.MRR.String(),
		"growth":     kpis.Growth,
		"profitable": kpis.Profitable,
	})

	return &Output{
		FounderID: input.FounderID,
		KPIs:      kpis,
		Periods:   len(metrics),
	}, nil
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

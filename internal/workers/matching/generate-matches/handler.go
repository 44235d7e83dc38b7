// internal/workers/matching/generate-matches/handler.go
package generatematches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/matching"
	"dealflow-workers/internal/models"
	"dealflow-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-matches"
)

var (
	ErrMatchUpsertFailed = errors.New("MATCH_UPSERT_FAILED")
)

type Handler struct {
	config    *Config
	db        *sql.DB
	logger    logger.Logger
	founders  *store.FounderStore
	investors *store.InvestorStore
	matches   *store.MatchStore
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		founders:  store.NewFounderStore(db),
		investors: store.NewInvestorStore(db),
		matches:   store.NewMatchStore(db),
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
		if errors.Is(err, store.ErrNotFound) {
			h.failJob(client, job, "PROFILE_NOT_FOUND", err.Error())
			return
		}
		h.failJob(client, job, "MATCH_UPSERT_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute scores one founder against every active investor and
// persists the pairs that clear the floor. The same Score function
// backs the investor-side feed, so the two sides can never disagree
// about a pair.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	founder, err := h.founders.Get(ctx, input.FounderID)
	if err != nil {
		return nil, fmt.Errorf("founder %s: %w", input.FounderID, err)
	}

	pitchScore, _, err := h.founders.LatestDeckScore(ctx, founder.ID)
	if err != nil {
		h.logger.Warn("deck score lookup failed, scoring without pitch factor", map[string]interface{}{
			"founderId": founder.ID,
			"error":     err,
		})
		pitchScore = 0
	}

	investors, err := h.investors.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchUpsertFailed, err)
	}

	generated := 0
	for i := range investors {
		investor := &investors[i]

		score, reasons := matching.Score(founder, investor, pitchScore)
		if score < h.config.MinScore {
			continue
		}

		// Upsert refreshes score and reason; a status set by either
		// party survives the rescore.
		_, err := h.matches.Upsert(ctx, founder.ID, investor.ID, score, matching.ReasonString(reasons), models.StatusNew)
		if err != nil {
			return nil, fmt.Errorf("%w: pair %s/%s: %v", ErrMatchUpsertFailed, founder.ID, investor.ID, err)
		}
		generated++
		metrics.MatchesGenerated.Inc()
		metrics.MatchScoreDistribution.Observe(float64(score))
	}

	h.logger.Info("matches generated", map[string]interface{}{
		"founderId": founder.ID,
		"evaluated": len(investors),
		"generated": generated,
	})

	return &Output{
		FounderID:          founder.ID,
		InvestorsEvaluated: len(investors),
		MatchesGenerated:   generated,
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

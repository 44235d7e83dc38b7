// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

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
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "calculate-match-score"
)

var (
	ErrMatchScoreFailed = errors.New("MATCH_SCORE_FAILED")
)

type Handler struct {
	config    *Config
	db        *sql.DB
	redis     *redis.Client
	logger    logger.Logger
	founders  *store.FounderStore
	investors *store.InvestorStore
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		redis:     rdb,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		founders:  store.NewFounderStore(db),
		investors: store.NewInvestorStore(db),
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
		h.failJob(client, job, "MATCH_SCORE_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// Inline profiles skip every lookup; useful for what-if scoring
	// against unsaved edits.
	founder := input.FounderProfile
	investor := input.InvestorProfile

	if founder == nil && investor == nil {
		if cached := h.getCachedScore(ctx, input.FounderID, input.InvestorID); cached != nil {
			return cached, nil
		}
	}

	if founder == nil {
		f, err := h.founders.Get(ctx, input.FounderID)
		if err != nil {
			return nil, fmt.Errorf("founder %s: %w", input.FounderID, err)
		}
		founder = f
	}
	if investor == nil {
		inv, err := h.investors.Get(ctx, input.InvestorID)
		if err != nil {
			return nil, fmt.Errorf("investor %s: %w", input.InvestorID, err)
		}
		investor = inv
	}

	// No deck means no pitch factor; the configured default only covers
	// a degraded deck lookup.
	pitchScore := 0
	if input.PitchScore != nil {
		pitchScore = *input.PitchScore
	} else if founder.ID != "" {
		if score, ok, err := h.founders.LatestDeckScore(ctx, founder.ID); err != nil {
			pitchScore = h.config.DefaultPitchScore
			h.logger.Warn("deck score lookup failed, using default", map[string]interface{}{
				"founderId": founder.ID,
				"error":     err,
			})
		} else if ok {
			pitchScore = score
		}
	}

	score, reasons := matching.Score(founder, investor, pitchScore)

	metrics.MatchScoresComputed.Inc()
	metrics.MatchScoreDistribution.Observe(float64(score))

	output := &Output{
		MatchScore:   score,
		MatchReasons: reasons,
		MatchReason:  matching.ReasonString(reasons),
		PitchScore:   pitchScore,
	}

	if input.FounderProfile == nil && input.InvestorProfile == nil {
		h.cacheScore(ctx, input.FounderID, input.InvestorID, output)
	}

	h.logger.Info("match score calculated", map[string]interface{}{
		"founderId":  input.FounderID,
		"investorId": input.InvestorID,
		"score":      score,
		"reasons":    output.MatchReason,
	})

	return output, nil
}

func (h *Handler) getCachedScore(ctx context.Context, founderID, investorID string) *Output {
	if founderID == "" || investorID == "" {
		return nil
	}
	val, err := h.redis.Get(ctx, cacheKey(founderID, investorID)).Result()
	if err != nil {
		return nil
	}
	var output Output
	if err := json.Unmarshal([]byte(val), &output); err != nil {
		return nil
	}
	return &output
}

func (h *Handler) cacheScore(ctx context.Context, founderID, investorID string, output *Output) {
	if founderID == "" || investorID == "" {
		return
	}
	data, _ := json.Marshal(output)
	h.redis.Set(ctx, cacheKey(founderID, investorID), data, h.config.CacheTTL)
}

func cacheKey(founderID, investorID string) string {
	return "match:score:" + founderID + ":" + investorID
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

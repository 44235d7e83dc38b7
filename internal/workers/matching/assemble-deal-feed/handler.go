// internal/workers/matching/assemble-deal-feed/handler.go
package assembledealfeed

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/matching"
	"dealflow-workers/internal/models"
	"dealflow-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	TaskType = "assemble-deal-feed"
)

var (
	ErrFeedAssemblyFailed = errors.New("FEED_ASSEMBLY_FAILED")
)

type Handler struct {
	config    *Config
	db        *sql.DB
	redis     *redis.Client
	logger    logger.Logger
	founders  *store.FounderStore
	investors *store.InvestorStore
	matches   *store.MatchStore
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		redis:     rdb,
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
		h.failJob(client, job, "FEED_ASSEMBLY_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	investor, err := h.investors.Get(ctx, input.InvestorID)
	if err != nil {
		return nil, fmt.Errorf("investor %s: %w", input.InvestorID, err)
	}

	candidates, err := h.founders.ActiveCandidates(ctx, input.Filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedAssemblyFailed, err)
	}

	founderIDs := make([]string, len(candidates))
	for i, f := range candidates {
		founderIDs[i] = f.ID
	}
	statuses, err := h.matches.StatusByFounder(ctx, input.InvestorID, founderIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedAssemblyFailed, err)
	}

	var feed []models.DealCard
	for i := range candidates {
		founder := &candidates[i]

		status, ok := statuses[founder.ID]
		if !ok {
			status = models.StatusNew
		}
		if status == models.StatusDeclined {
			continue
		}

		pitchScore := h.deckScore(ctx, founder.ID)
		score, reasons := matching.Score(founder, investor, pitchScore)

		// Saved deals resurface no matter how the score has moved since.
		if score < h.config.MinScore && status != models.StatusSaved {
			continue
		}

		mrr, growth := h.tractionSnapshot(ctx, founder.ID)

		feed = append(feed, models.DealCard{
			FounderID:    founder.ID,
			CompanyName:  founder.CompanyName,
			MatchScore:   score,
			MatchReasons: matching.ReasonString(reasons),
			MRR:          mrr,
			Growth:       growth,
			PitchScore:   pitchScore,
			Status:       status,
		})
	}

	// Saved first, then score descending. SliceStable keeps equal
	// scores in candidate-query order (id ascending).
	sort.SliceStable(feed, func(i, j int) bool {
		si, sj := feed[i].Status == models.StatusSaved, feed[j].Status == models.StatusSaved
		if si != sj {
			return si
		}
		return feed[i].MatchScore > feed[j].MatchScore
	})

	limit := h.config.Limit
	if input.Filters.Limit > 0 && input.Filters.Limit < limit {
		limit = input.Filters.Limit
	}
	if len(feed) > limit {
		feed = feed[:limit]
	}

	h.logger.Info("deal feed assembled", map[string]interface{}{
		"investorId": input.InvestorID,
		"candidates": len(candidates),
		"feedSize":   len(feed),
	})

	return &Output{DealFeed: feed, TotalCount: len(feed)}, nil
}

// deckScore resolves the founder's latest deck analysis score, zero
// when no deck exists. Lookup failures degrade to zero as well; a
// missing pitch factor is never worth failing the whole feed.
func (h *Handler) deckScore(ctx context.Context, founderID string) int {
	key := "deck:score:" + founderID
	if val, err := h.redis.Get(ctx, key).Result(); err == nil {
		if score, err := strconv.Atoi(val); err == nil {
			return score
		}
	}

	score, _, err := h.founders.LatestDeckScore(ctx, founderID)
	if err != nil {
		h.logger.Warn("deck score lookup failed", map[string]interface{}{
			"founderId": founderID,
			"error":     err,
		})
		return 0
	}
	h.redis.Set(ctx, key, strconv.Itoa(score), h.config.DeckScoreTTL)
	return score
}

func (h *Handler) tractionSnapshot(ctx context.Context, founderID string) (mrr decimal.Decimal, growth int) {
	metrics, err := h.founders.LatestTraction(ctx, founderID, h.config.TractionPeriods)
	if err != nil {
		h.logger.Warn("traction lookup failed", map[string]interface{}{
			"founderId": founderID,
			"error":     err,
		})
		return decimal.Zero, 0
	}
	return matching.TractionSnapshot(metrics)
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

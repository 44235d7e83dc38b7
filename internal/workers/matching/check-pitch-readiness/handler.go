// internal/workers/matching/check-pitch-readiness/handler.go
package checkpitchreadiness

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "check-pitch-readiness"

var (
	ErrPitchCheckFailed = errors.New("PITCH_CHECK_FAILED")
)

// Readiness weights. Profile fields carry 55 points, near-complete
// profiles another 15, an uploaded deck the remaining 30.
const (
	companyNamePoints   = 10
	stagePoints         = 10
	sectorPoints        = 10
	businessModelPoints = 10
	raisingPoints       = 10
	foundingYearPoints  = 5
	completionBonus     = 15
	completionFloor     = 90
	deckPoints          = 30
)

const (
	LabelReady     = "Investor-Ready"
	LabelGood      = "Good"
	LabelNeedsWork = "Needs Work"
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
		if errors.Is(err, store.ErrNotFound) {
			h.failJob(client, job, "PROFILE_NOT_FOUND", err.Error())
			return
		}
		h.failJob(client, job, "PITCH_CHECK_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	founder, err := h.founders.Get(ctx, input.FounderID)
	if err != nil {
		return nil, fmt.Errorf("founder %s: %w", input.FounderID, err)
	}

	_, hasDeck, err := h.founders.LatestDeckScore(ctx, founder.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPitchCheckFailed, err)
	}

	score := 0
	var suggestions []string

	if founder.CompanyName != "" {
		score += companyNamePoints
	} else {
		suggestions = append(suggestions, "Add your company name")
	}
	if founder.Stage != "" {
		score += stagePoints
	} else {
		suggestions = append(suggestions, "Set your funding stage")
	}
	if founder.Sector != "" {
		score += sectorPoints
	} else {
		suggestions = append(suggestions, "Set your sector")
	}
	if founder.BusinessModel != "" {
		score += businessModelPoints
	} else {
		suggestions = append(suggestions, "Describe your business model")
	}
	if founder.ActivelyRaising {
		score += raisingPoints
	} else {
		suggestions = append(suggestions, "Mark your profile as actively raising")
	}
	if founder.FoundingYear > 0 {
		score += foundingYearPoints
	} else {
		suggestions = append(suggestions, "Add your founding year")
	}
	if founder.CompletionPct >= completionFloor {
		score += completionBonus
	} else {
		suggestions = append(suggestions, "Complete your profile to at least 90%")
	}
	if hasDeck {
		score += deckPoints
	} else {
		suggestions = append(suggestions, "Upload a pitch deck")
	}

	label := LabelNeedsWork
	switch {
	case score >= h.config.ReadyThreshold:
		label = LabelReady
	case score >= h.config.GoodThreshold:
		label = LabelGood
	}

	h.logger.Info("pitch readiness checked", map[string]interface{}{
		"founderId": founder.ID,
		"score":     score,
		"label":     label,
		"hasDeck":   hasDeck,
	})

	return &Output{
		FounderID:      founder.ID,
		ReadinessScore: score,
		Label:          label,
		HasDeck:        hasDeck,
		Suggestions:    suggestions,
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

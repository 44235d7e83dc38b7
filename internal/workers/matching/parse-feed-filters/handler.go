// internal/workers/matching/parse-feed-filters/handler.go
package parsefeedfilters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"
	"dealflow-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-feed-filters"

var (
	ErrInvalidFilterFormat = errors.New("INVALID_FILTER_FORMAT")
)

// validStages is the stage enum shared with the candidate query's exact
// match. Anything outside it is a caller error, not a zero-result feed.
var validStages = map[string]bool{
	"pre-seed": true, "seed": true, "series-a": true,
	"series-b": true, "series-c": true, "growth": true,
}

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "INVALID_FILTER_FORMAT", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute normalizes raw caller filters into the canonical form the
// feed assembler consumes: trim plus lowercase, applied here once so
// substring matching downstream never needs to re-normalize.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.RawFilters == nil {
		input.RawFilters = make(map[string]interface{})
	}

	var filters models.FeedFilters

	if raw, ok := input.RawFilters["stage"]; ok {
		stage, err := h.parseString(raw, "stage")
		if err != nil {
			return nil, err
		}
		if stage != "" && !validStages[stage] {
			return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidFilterFormat, stage)
		}
		filters.Stage = stage
	}

	if raw, ok := input.RawFilters["sector"]; ok {
		sector, err := h.parseString(raw, "sector")
		if err != nil {
			return nil, err
		}
		filters.Sector = sector
	}

	if raw, ok := input.RawFilters["geography"]; ok {
		geography, err := h.parseString(raw, "geography")
		if err != nil {
			return nil, err
		}
		filters.Geography = geography
	}

	if raw, ok := input.RawFilters["limit"]; ok {
		limit, err := h.parseLimit(raw)
		if err != nil {
			return nil, err
		}
		filters.Limit = limit
	}

	h.logger.Info("filters parsed", map[string]interface{}{
		"stage":     filters.Stage,
		"sector":    filters.Sector,
		"geography": filters.Geography,
		"limit":     filters.Limit,
	})

	return &Output{Filters: filters}, nil
}

func (h *Handler) parseString(raw interface{}, field string) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidFilterFormat, field)
	}
	return strings.ToLower(strings.TrimSpace(s)), nil
}

func (h *Handler) parseLimit(raw interface{}) (int, error) {
	var limit int
	switch v := raw.(type) {
	case float64:
		limit = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: limit %q is not a number", ErrInvalidFilterFormat, v)
		}
		limit = n
	default:
		return 0, fmt.Errorf("%w: limit must be a number", ErrInvalidFilterFormat)
	}

	if limit < 0 {
		return 0, fmt.Errorf("%w: limit must not be negative", ErrInvalidFilterFormat)
	}
	if limit > h.config.MaxLimit {
		limit = h.config.MaxLimit
	}
	return limit, nil
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

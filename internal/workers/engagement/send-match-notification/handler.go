// internal/workers/engagement/send-match-notification/handler.go
package sendmatchnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/common/metrics"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "send-match-notification"

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrUnknownAction          = errors.New("UNKNOWN_ACTION")
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
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
		if errors.Is(err, ErrUnknownAction) {
			h.failJob(client, job, "PARSE_ERROR", err.Error())
			return
		}
		h.failJob(client, job, "NOTIFICATION_SEND_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute delivers best effort: a failed channel is reported in the
// output, and only a run where every attempted channel failed is an
// error. The status change this notifies about has already committed.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	subject, body, err := h.render(input)
	if err != nil {
		return nil, err
	}

	output := &Output{Message: body}
	attempted := 0

	if h.config.EmailEnabled && input.RecipientEmail != "" {
		attempted++
		if err := h.sendEmail(ctx, input.RecipientEmail, subject, body); err != nil {
			h.logger.Warn("email delivery failed", map[string]interface{}{
				"recipient": input.RecipientEmail,
				"error":     err,
			})
			output.ChannelsFailed = append(output.ChannelsFailed, "email")
		} else {
			output.ChannelsSent = append(output.ChannelsSent, "email")
			metrics.NotificationsSent.WithLabelValues("email").Inc()
		}
	}

	if h.config.SMSEnabled && input.RecipientPhone != "" && input.MatchScore >= h.config.SMSMinScore {
		attempted++
		if err := h.sendSMS(ctx, input.RecipientPhone, body); err != nil {
			h.logger.Warn("sms delivery failed", map[string]interface{}{
				"recipient": input.RecipientPhone,
				"error":     err,
			})
			output.ChannelsFailed = append(output.ChannelsFailed, "sms")
		} else {
			output.ChannelsSent = append(output.ChannelsSent, "sms")
			metrics.NotificationsSent.WithLabelValues("sms").Inc()
		}
	}

	if attempted > 0 && len(output.ChannelsSent) == 0 {
		return nil, fmt.Errorf("%w: all %d channels failed", ErrNotificationSendFailed, attempted)
	}

	h.logger.Info("match notification processed", map[string]interface{}{
		"founderId":  input.FounderID,
		"investorId": input.InvestorID,
		"action":     input.Action,
		"sent":       output.ChannelsSent,
		"failed":     output.ChannelsFailed,
	})

	return output, nil
}

func (h *Handler) render(input *Input) (subject, body string, err error) {
	switch input.Action {
	case "interested":
		subject = fmt.Sprintf("%s expressed interest in %s", input.FundName, input.CompanyName)
		body = fmt.Sprintf("%s expressed interest in %s (match score %d). Open your inbox to start the conversation.",
			input.FundName, input.CompanyName, input.MatchScore)
	case "connected":
		subject = fmt.Sprintf("%s and %s are now connected", input.CompanyName, input.FundName)
		body = fmt.Sprintf("%s and %s are now connected. The conversation is open in your inbox.",
			input.CompanyName, input.FundName)
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownAction, input.Action)
	}
	return subject, body, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(h.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, phone, body string) error {
	_, err := h.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: awssdk.String(phone),
		Message:     awssdk.String(body),
	})
	return err
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

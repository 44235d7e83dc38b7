// Package aws holds thin wrappers around the AWS SDK clients the
// notification workers depend on. The wrappers expose only the calls
// the engagement domain needs, so handlers can declare small sender
// interfaces and tests can stub them without touching the SDK.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// SESClient sends match notification emails through Amazon SES.
type SESClient struct {
	client *ses.Client
}

// NewSESClient loads the default AWS credential chain for the given
// region. Called at startup only when email notifications are enabled.
func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg)}, nil
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}

package dispatchses

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/praxis/pkg/dispatchx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESDispatcher delivers verification codes by email via AWS SES, for
// identities that are email contacts rather than phone numbers.
type SESDispatcher struct {
	client      *ses.Client
	fromAddress string
}

// NewSESDispatcher creates a new SES code dispatcher.
func NewSESDispatcher(client *ses.Client, fromAddress string) *SESDispatcher {
	return &SESDispatcher{
		client:      client,
		fromAddress: fromAddress,
	}
}

// DeliverCode sends the code to the identity's email address.
func (d *SESDispatcher) DeliverCode(ctx context.Context, identity, code string) error {
	if !strings.Contains(identity, "@") {
		return dispatchx.ErrInvalidRecipient().WithDetail("reason", "not an email address")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(d.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{identity},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String("Your verification code"),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := d.client.SendEmail(ctx, input); err != nil {
		return dispatchx.ErrSendFailed(err).WithDetail("channel", "ses")
	}
	return nil
}

package dispatchsns

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/praxis/pkg/dispatchx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSDispatcher delivers verification codes by SMS via AWS SNS.
type SNSDispatcher struct {
	client   *sns.Client
	senderID string
}

// NewSNSDispatcher creates a new SMS code dispatcher.
func NewSNSDispatcher(client *sns.Client, senderID string) *SNSDispatcher {
	return &SNSDispatcher{
		client:   client,
		senderID: senderID,
	}
}

// DeliverCode publishes the code as a transactional SMS to the phone number.
func (d *SNSDispatcher) DeliverCode(ctx context.Context, identity, code string) error {
	if !strings.HasPrefix(identity, "+") {
		return dispatchx.ErrInvalidRecipient().WithDetail("reason", "not an E.164 phone number")
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(identity),
		Message:     aws.String(fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(d.senderID),
			},
		},
	}

	if _, err := d.client.Publish(ctx, input); err != nil {
		return dispatchx.ErrSendFailed(err).WithDetail("channel", "sns")
	}
	return nil
}

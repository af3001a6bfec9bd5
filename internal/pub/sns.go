package pub

import (
	"brandtheme/internal/ports"
	"brandtheme/internal/types"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snsTypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/goccy/go-json"
)

type snsPub struct{ cli *sns.Client }

func NewSNS(c *sns.Client) ports.Publisher { return &snsPub{cli: c} }

// NewSNSFromConfig builds an SNS publisher from the default AWS config. A non-empty endpoint points
// the client at a local mock with static test credentials.
func NewSNSFromConfig(ctx context.Context, endpoint string) (ports.Publisher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	cli := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			if o.Region == "" {
				o.Region = "us-east-1"
			}
			o.Credentials = credentials.NewStaticCredentialsProvider("test", "test", "")
		}
	})
	return NewSNS(cli), nil
}

func (s *snsPub) PublishRaw(ctx context.Context, arn string, payload []byte) error {
	_, err := s.cli.Publish(ctx, &sns.PublishInput{
		TopicArn: &arn,
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snsTypes.MessageAttributeValue{
			"content-type": {DataType: aws.String("String"), StringValue: aws.String("application/json")},
		},
	})
	return err
}

// PublishEvent encodes evt as JSON and sends it to arn.
func PublishEvent(ctx context.Context, p ports.Publisher, arn string, evt types.BrandEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.PublishRaw(ctx, arn, b)
}

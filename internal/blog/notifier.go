package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const EventBlogGenerated = "blog.generated"

// Notifier announces stored artifacts. Failures never change the outcome of
// an invocation since the artifact is already durable.
type Notifier interface {
	Notify(ctx context.Context, result *Result) error
}

type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSNotifier struct {
	client   PublishAPI
	topicARN string
	now      func() time.Time
}

func NewSNSNotifier(client PublishAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN, now: time.Now}
}

type generatedMessage struct {
	Event       string    `json:"event"`
	Topic       string    `json:"topic"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"s3_key"`
	Size        int       `json:"size"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (n *SNSNotifier) Notify(ctx context.Context, result *Result) error {
	msg, err := json.Marshal(generatedMessage{
		Event:       EventBlogGenerated,
		Topic:       result.Topic,
		Bucket:      result.Bucket,
		Key:         result.Key,
		Size:        result.Size,
		GeneratedAt: n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String("Blog generated"),
		Message:  aws.String(string(msg)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(EventBlogGenerated)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", n.topicARN, err)
	}
	return nil
}

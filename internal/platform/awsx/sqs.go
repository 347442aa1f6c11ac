package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/cgvega/taskvault/internal/storage"
)

// notificationDelaySeconds is how long a sent notification stays invisible
// before consumers can receive it.
const notificationDelaySeconds = 10

// sqsAPI is the subset of the SQS client used by the notification queue.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSNotificationQueue implements storage.NotificationQueue against a
// single SQS queue. It performs no retries.
type SQSNotificationQueue struct {
	client   sqsAPI
	queueURL string
}

// NewSQSNotificationQueue creates a notification queue bound to the given
// queue URL.
func NewSQSNotificationQueue(client *sqs.Client, queueURL string) *SQSNotificationQueue {
	return &SQSNotificationQueue{client: client, queueURL: queueURL}
}

// Ensure SQSNotificationQueue implements storage.NotificationQueue
var _ storage.NotificationQueue = (*SQSNotificationQueue)(nil)

// EnqueueNotification implements storage.NotificationQueue.EnqueueNotification
func (q *SQSNotificationQueue) EnqueueNotification(
	ctx context.Context,
	attributes map[string]string,
	body string,
) (string, error) {
	var msgAttrs map[string]types.MessageAttributeValue
	if len(attributes) > 0 {
		msgAttrs = make(map[string]types.MessageAttributeValue, len(attributes))
		for k, v := range attributes {
			msgAttrs[k] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(v),
			}
		}
	}

	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(q.queueURL),
		MessageBody:       aws.String(body),
		DelaySeconds:      notificationDelaySeconds,
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		return "", fmt.Errorf("%w: send message: %v", storage.ErrStorageUnavailable, err)
	}

	return aws.ToString(out.MessageId), nil
}

// DequeueNotification implements storage.NotificationQueue.DequeueNotification
// It performs a single non-blocking receive of at most one message.
func (q *SQSNotificationQueue) DequeueNotification(ctx context.Context) (*storage.Message, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(q.queueURL),
		MaxNumberOfMessages:   1,
		MessageAttributeNames: []string{"All"},
		WaitTimeSeconds:       0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: receive message: %v", storage.ErrStorageUnavailable, err)
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}

	raw := out.Messages[0]
	msg := &storage.Message{
		ID:            aws.ToString(raw.MessageId),
		Body:          aws.ToString(raw.Body),
		ReceiptHandle: aws.ToString(raw.ReceiptHandle),
	}
	if len(raw.MessageAttributes) > 0 {
		msg.Attributes = make(map[string]string, len(raw.MessageAttributes))
		for k, v := range raw.MessageAttributes {
			msg.Attributes[k] = aws.ToString(v.StringValue)
		}
	}

	return msg, nil
}

// AckNotification implements storage.NotificationQueue.AckNotification
func (q *SQSNotificationQueue) AckNotification(ctx context.Context, msg *storage.Message) error {
	if msg == nil || msg.ReceiptHandle == "" {
		return fmt.Errorf("message has no receipt handle")
	}

	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(msg.ReceiptHandle),
	})
	if err != nil {
		return fmt.Errorf("%w: delete message: %v", storage.ErrStorageUnavailable, err)
	}
	return nil
}

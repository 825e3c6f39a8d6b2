package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSConsumerClient is a mock implementation of the SQS client for consumer testing.
type mockSQSConsumerClient struct {
	receiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (m *mockSQSConsumerClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil
}

func (m *mockSQSConsumerClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

// recordingHandler captures the messages a Consumer hands it.
type recordingHandler struct {
	messages []JobMessage
	counts   []int
	err      error
}

func (h *recordingHandler) Handle(_ context.Context, msg JobMessage, receiveCount int) error {
	h.messages = append(h.messages, msg)
	h.counts = append(h.counts, receiveCount)
	return h.err
}

func TestConsumer_processMessage(t *testing.T) {
	queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/jobs-queue"

	t.Run("successful message processing", func(t *testing.T) {
		// given
		handler := &recordingHandler{}
		consumer := &Consumer{queueURL: queueURL, handler: handler}

		messageBody := `{"job_id":"job-1","operation":"generate_report","user_id":"u1"}`
		message := types.Message{
			Body:          aws.String(messageBody),
			ReceiptHandle: aws.String("test-receipt-handle"),
			Attributes: map[string]string{
				"ApproximateReceiveCount": "2",
			},
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
		require.Len(t, handler.messages, 1)
		assert.Equal(t, "job-1", handler.messages[0].JobID)
		assert.Equal(t, "generate_report", handler.messages[0].Operation)
		assert.Equal(t, []int{2}, handler.counts)
	})

	t.Run("missing receive count defaults to one", func(t *testing.T) {
		// given
		handler := &recordingHandler{}
		consumer := &Consumer{queueURL: queueURL, handler: handler}

		message := types.Message{
			Body:          aws.String(`{"job_id":"job-1","operation":"sync_data"}`),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{1}, handler.counts)
	})

	t.Run("nil message body", func(t *testing.T) {
		// given
		consumer := &Consumer{queueURL: queueURL, handler: &recordingHandler{}}

		message := types.Message{
			Body:          nil,
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "message body is nil")
	})

	t.Run("invalid JSON message body", func(t *testing.T) {
		// given
		consumer := &Consumer{queueURL: queueURL, handler: &recordingHandler{}}

		message := types.Message{
			Body:          aws.String(`{"invalid json`),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal message")
	})
}

func TestConsumer_deleteMessage(t *testing.T) {
	queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/jobs-queue"

	t.Run("successful message deletion", func(t *testing.T) {
		// given
		ctx := context.Background()

		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				assert.Equal(t, queueURL, *params.QueueUrl)
				assert.NotNil(t, params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		consumer := &Consumer{client: mockClient, queueURL: queueURL}

		message := types.Message{
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.deleteMessage(ctx, message)

		// then
		require.NoError(t, err)
	})

	t.Run("error deleting message", func(t *testing.T) {
		// given
		ctx := context.Background()

		expectedErr := errors.New("failed to delete")
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return nil, expectedErr
			},
		}

		consumer := &Consumer{client: mockClient, queueURL: queueURL}

		message := types.Message{
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.deleteMessage(ctx, message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete message")
	})
}

func TestConsumer_receiveMessages(t *testing.T) {
	queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/jobs-queue"

	t.Run("receives, handles and deletes messages", func(t *testing.T) {
		// given
		ctx := context.Background()
		deleted := 0

		messageBody := `{"job_id":"job-1","operation":"export_data","user_id":"u1"}`
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				assert.Equal(t, queueURL, *params.QueueUrl)
				assert.Equal(t, int32(10), params.MaxNumberOfMessages)
				assert.Equal(t, int32(20), params.WaitTimeSeconds)
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{
							Body:          aws.String(messageBody),
							ReceiptHandle: aws.String("test-receipt-handle"),
						},
					},
				}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		handler := &recordingHandler{}
		consumer := NewConsumer(mockClient, queueURL, handler)

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, handler.messages, 1)
		assert.Equal(t, 1, deleted)
	})

	t.Run("handler error keeps the message on the queue", func(t *testing.T) {
		// given
		ctx := context.Background()
		deleted := 0

		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{
							Body:          aws.String(`{"job_id":"job-1","operation":"export_data"}`),
							ReceiptHandle: aws.String("test-receipt-handle"),
						},
					},
				}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		handler := &recordingHandler{err: errors.New("transient failure")}
		consumer := NewConsumer(mockClient, queueURL, handler)

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, deleted)
	})

	t.Run("handles receive message error", func(t *testing.T) {
		// given
		ctx := context.Background()

		expectedErr := errors.New("failed to receive")
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return nil, expectedErr
			},
		}

		consumer := NewConsumer(mockClient, queueURL, &recordingHandler{})

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})
}

func TestNewConsumer(t *testing.T) {
	t.Run("creates consumer successfully", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{}
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/jobs-queue"

		// when
		consumer := NewConsumer(mockClient, queueURL, &recordingHandler{})

		// then
		require.NotNil(t, consumer)
		assert.Equal(t, queueURL, consumer.queueURL)
	})
}

package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-be/internal/adapters/queue"
	"github.com/ammerola/stock-be/internal/core/domain"
	"github.com/ammerola/stock-be/internal/workers"
	"github.com/ammerola/stock-be/test/helpers"
)

type failingEnqueuer struct {
	err error
}

func (f *failingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return nil, f.err
}

// newTestBroker returns a real asynq client and inspector backed by miniredis
func newTestBroker(t *testing.T) (*asynq.Client, *asynq.Inspector) {
	t.Helper()

	testRedis := helpers.SetupTestRedis(t)
	opt := asynq.RedisClientOpt{Addr: testRedis.Server.Addr()}

	client := asynq.NewClient(opt)
	inspector := asynq.NewInspector(opt)
	t.Cleanup(func() {
		inspector.Close()
		client.Close()
	})
	return client, inspector
}

func pendingTasks(t *testing.T, inspector *asynq.Inspector, queueName string) []*asynq.TaskInfo {
	t.Helper()

	tasks, err := inspector.ListPendingTasks(queueName)
	require.NoError(t, err)
	return tasks
}

func lowStockAlert(code string, quantity int, detected time.Time) domain.LowStockAlert {
	return domain.LowStockAlert{
		Code:         code,
		Name:         "Caneta",
		Quantity:     quantity,
		MinimumStock: 5,
		DetectedAt:   detected,
	}
}

func TestPublisher_PublishLowStock(t *testing.T) {
	client, inspector := newTestBroker(t)
	pub := queue.NewPublisher(client, helpers.TestLogger())

	detected := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, pub.PublishLowStock(context.Background(), lowStockAlert("A1", 1, detected)))

	tasks := pendingTasks(t, inspector, workers.QueueCritical)
	require.Len(t, tasks, 1)
	assert.Equal(t, workers.TypeLowStockAlert, tasks[0].Type)
	assert.Equal(t, workers.QueueCritical, tasks[0].Queue)

	var decoded domain.LowStockAlert
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &decoded))
	assert.Equal(t, "A1", decoded.Code)
	assert.Equal(t, 1, decoded.Quantity)
	assert.True(t, decoded.DetectedAt.Equal(detected))
}

func TestPublisher_PublishLowStockDeduplicatesByCode(t *testing.T) {
	client, inspector := newTestBroker(t)
	pub := queue.NewPublisher(client, helpers.TestLogger())
	ctx := context.Background()

	detected := time.Date(2025, 2, 3, 4, 0, 0, 0, time.UTC)

	// same code inside one window, with a different quantity and detection time each time
	require.NoError(t, pub.PublishLowStock(ctx, lowStockAlert("A1", 3, detected)))
	require.NoError(t, pub.PublishLowStock(ctx, lowStockAlert("A1", 2, detected.Add(time.Second))))
	require.NoError(t, pub.PublishLowStock(ctx, lowStockAlert("A1", 1, detected.Add(5*time.Minute))))
	assert.Len(t, pendingTasks(t, inspector, workers.QueueCritical), 1)

	// another code is alerted independently
	require.NoError(t, pub.PublishLowStock(ctx, lowStockAlert("B2", 0, detected.Add(time.Minute))))
	assert.Len(t, pendingTasks(t, inspector, workers.QueueCritical), 2)

	// the next window alerts again
	require.NoError(t, pub.PublishLowStock(ctx, lowStockAlert("A1", 0, detected.Add(20*time.Minute))))
	assert.Len(t, pendingTasks(t, inspector, workers.QueueCritical), 3)
}

func TestPublisher_PublishLowStockBrokerFailure(t *testing.T) {
	pub := queue.NewPublisher(&failingEnqueuer{err: errors.New("redis down")}, helpers.TestLogger())

	err := pub.PublishLowStock(context.Background(), lowStockAlert("A1", 1, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enqueue low stock alert")
}

func TestPublisher_RequestBackup(t *testing.T) {
	client, inspector := newTestBroker(t)
	pub := queue.NewPublisher(client, helpers.TestLogger())

	jobID, err := pub.RequestBackup(context.Background(), "manual")
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	tasks := pendingTasks(t, inspector, workers.QueueLow)
	require.Len(t, tasks, 1)
	assert.Equal(t, workers.TypeSnapshotBackup, tasks[0].Type)

	var payload workers.SnapshotBackupPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &payload))
	assert.Equal(t, jobID, payload.JobID)
	assert.Equal(t, "manual", payload.Reason)
}

func TestPublisher_RequestBackupBrokerFailure(t *testing.T) {
	pub := queue.NewPublisher(&failingEnqueuer{err: errors.New("redis down")}, helpers.TestLogger())

	_, err := pub.RequestBackup(context.Background(), "manual")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enqueue snapshot backup")
}

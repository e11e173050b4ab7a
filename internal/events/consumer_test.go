package events

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retail-dashboard/ledger-service/internal/domain"
	"github.com/retail-dashboard/ledger-service/internal/repository"
	"github.com/retail-dashboard/ledger-service/internal/sentiment"
	"github.com/retail-dashboard/ledger-service/internal/service"
)

func newTestConsumer(t *testing.T) (*RestockConsumer, *service.LedgerService) {
	t.Helper()
	products, reviews, orders, err := repository.NewFileStores(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, products.Save(ctx, []domain.Product{{ID: 1, Name: "Mug", Stock: 4}}))

	ledger := service.NewLedgerService(products, reviews, orders, sentiment.NewKeywordClassifier(), zap.NewNop())
	// The reader does not dial until messages are fetched, so the
	// consumer can be constructed without a broker.
	consumer := NewRestockConsumer("localhost:9092", "test-group", "restock-events", ledger, zap.NewNop())
	t.Cleanup(func() { _ = consumer.reader.Close() })
	return consumer, ledger
}

func TestProcessMessageAppliesRestock(t *testing.T) {
	consumer, ledger := newTestConsumer(t)
	ctx := context.Background()

	msg := kafka.Message{Value: []byte(`{
		"event_id": "ev-1",
		"updates": [{"id": 1, "stock": 80}, {"id": 99, "stock": 5}]
	}`)}
	require.NoError(t, consumer.processMessage(ctx, msg))

	p, err := ledger.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 80, p.Stock)
}

func TestProcessMessageRejectsMalformedPayload(t *testing.T) {
	consumer, ledger := newTestConsumer(t)
	ctx := context.Background()

	msg := kafka.Message{Value: []byte(`{not json`)}
	assert.Error(t, consumer.processMessage(ctx, msg))

	p, err := ledger.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/retail-dashboard/ledger-service/internal/domain"
	"github.com/retail-dashboard/ledger-service/internal/service"
)

// KafkaPublisher implements service.EventPublisher on top of two
// topic writers. Publish failures are logged and dropped; events are
// best-effort notifications, never part of the request outcome.
type KafkaPublisher struct {
	orderWriter *kafka.Writer
	stockWriter *kafka.Writer
	logger      *zap.Logger
}

var _ service.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers, orderTopic, stockTopic string, logger *zap.Logger) *KafkaPublisher {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		}
	}
	return &KafkaPublisher{
		orderWriter: newWriter(orderTopic),
		stockWriter: newWriter(stockTopic),
		logger:      logger,
	}
}

func (p *KafkaPublisher) OrderPlaced(order domain.Order, itemsDecremented int) {
	event := OrderPlacedEvent{
		EventID:     uuid.NewString(),
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		TotalItems:  itemsDecremented,
		Timestamp:   time.Now().UTC(),
	}
	p.publish(p.orderWriter, event.EventID, event,
		zap.String("order_id", order.ID))
}

func (p *KafkaPublisher) StockLow(product domain.Product) {
	event := StockLowEvent{
		EventID:   uuid.NewString(),
		ProductID: product.ID,
		Name:      product.Name,
		Stock:     product.Stock,
		Threshold: service.LowStockThreshold,
		Timestamp: time.Now().UTC(),
	}
	p.publish(p.stockWriter, event.EventID, event,
		zap.Int("product_id", product.ID),
		zap.Int("stock", product.Stock))
}

func (p *KafkaPublisher) publish(w *kafka.Writer, key string, event any, fields ...zap.Field) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		p.logger.Error("Failed to publish event",
			append(fields, zap.String("topic", w.Topic), zap.Error(err))...)
		return
	}

	p.logger.Info("Event published",
		append(fields, zap.String("topic", w.Topic), zap.String("event_id", key))...)
}

// Close shuts down both writers; a failure on one must not leave the
// other's connections open.
func (p *KafkaPublisher) Close() error {
	return errors.Join(p.orderWriter.Close(), p.stockWriter.Close())
}

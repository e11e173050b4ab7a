package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/retail-dashboard/ledger-service/internal/service"
)

// RestockConsumer subscribes to the warehouse restock topic and
// applies each event to the ledger. Offsets are committed only after
// the restock has been persisted, so a crash mid-apply redelivers the
// event; restocks overwrite to absolute values, which makes the replay
// harmless.
type RestockConsumer struct {
	reader *kafka.Reader
	ledger *service.LedgerService
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRestockConsumer(brokers, groupID, topic string, ledger *service.LedgerService, logger *zap.Logger) *RestockConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{brokers},
		GroupID: groupID,
		Topic:   topic,
	})
	return &RestockConsumer{
		reader: reader,
		ledger: ledger,
		logger: logger,
		done:   make(chan struct{}),
	}
}

func (c *RestockConsumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.logger.Info("Restock consumer started",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID))

	go c.consume(ctx)
}

func (c *RestockConsumer) consume(ctx context.Context) {
	defer close(c.done)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("Restock consumer stopped")
				return
			}
			c.logger.Error("Error fetching message", zap.Error(err))
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Error("Error processing restock event",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Error committing message", zap.Error(err))
		}
	}
}

func (c *RestockConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event RestockRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}

	c.logger.Info("Processing restock event",
		zap.String("event_id", event.EventID),
		zap.Int("updates", len(event.Updates)),
		zap.String("request_id", event.RequestID))

	return c.ledger.ApplyRestock(ctx, event.Updates)
}

func (c *RestockConsumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	_ = c.reader.Close()
	<-c.done
}

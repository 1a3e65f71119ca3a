package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/retail-core/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer: producer,
		brokers:  brokers,
	}, nil
}

// PublishSaleCompleted publishes a sale completed event with tracing
func (p *Publisher) PublishSaleCompleted(ctx context.Context, event SaleCompletedEvent) error {
	event.EventType = EventSaleCompleted
	event.Timestamp = time.Now()
	return p.publish(ctx, TopicSaleEvents, event.EventType,
		fmt.Sprintf("sale_%d", event.SaleID), event,
		attribute.Int64("sale.id", int64(event.SaleID)),
		attribute.String("sale.reference", event.Reference),
		attribute.Int64("tenant.id", int64(event.TenantID)),
	)
}

// PublishSaleCancelled publishes a sale cancelled event with tracing
func (p *Publisher) PublishSaleCancelled(ctx context.Context, event SaleCancelledEvent) error {
	event.EventType = EventSaleCancelled
	event.Timestamp = time.Now()
	return p.publish(ctx, TopicSaleEvents, event.EventType,
		fmt.Sprintf("sale_%d", event.SaleID), event,
		attribute.Int64("sale.id", int64(event.SaleID)),
		attribute.String("sale.reference", event.Reference),
		attribute.Int64("tenant.id", int64(event.TenantID)),
	)
}

// PublishLowStock publishes a low stock alert with tracing
func (p *Publisher) PublishLowStock(ctx context.Context, event LowStockEvent) error {
	event.EventType = EventStockLow
	event.Timestamp = time.Now()
	return p.publish(ctx, TopicStockAlerts, event.EventType,
		fmt.Sprintf("product_%d", event.ProductID), event,
		attribute.Int64("product.id", int64(event.ProductID)),
		attribute.Int("product.stock_qty", event.StockQty),
	)
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, key string, event interface{}, attrs ...attribute.KeyValue) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", eventType),
		}, attrs...)...),
	)
	defer span.End()

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{
			Key:   []byte("event_type"),
			Value: []byte(eventType),
		},
	}
	for headerKey, value := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(headerKey),
			Value: []byte(value),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", topic).
			Str("event_type", eventType).
			Str("trace_id", span.SpanContext().TraceID().String()).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Logger.Info().
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("trace_id", span.SpanContext().TraceID().String()).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

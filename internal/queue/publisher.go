package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"
)

// Publisher publishes domain events to RabbitMQ.  Each call dials the
// broker, declares the target queue and publishes a persistent message.
// Errors are logged and returned so the caller can ignore them without
// interrupting the main request flow.
type Publisher struct {
    URL string
}

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// Publish sends event as JSON to the queue named by routingKey via the
// default exchange.
func (p *Publisher) Publish(ctx context.Context, routingKey string, event any) error {
    logger := log.Ctx(ctx).With().Str("routing_key", routingKey).Logger()

    body, err := json.Marshal(event)
    if err != nil {
        logger.Error().Err(err).Msg("rabbitmq: marshal event failed")
        return err
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        logger.Warn().Err(err).Msg("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logger.Warn().Err(err).Msg("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(routingKey, true, false, false, false, nil); err != nil {
        logger.Warn().Err(err).Msg("rabbitmq: queue declare failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", routingKey, false, false, pub); err != nil {
        logger.Warn().Err(err).Msg("rabbitmq: publish failed")
        return err
    }
    return nil
}

package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// StartAuditConsumer connects to RabbitMQ, declares every event queue
// (durable) and writes one structured audit log line per message.  It runs
// a reconnect loop with exponential backoff and returns only when ctx is
// cancelled.
func StartAuditConsumer(ctx context.Context, url string) error {
    logger := log.With().Str("component", "audit-consumer").Logger()
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            logger.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(backoff):
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, logger)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logger.Warn().Err(err).Msg("consume loop ended; reconnecting")
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(2 * time.Second):
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logger zerolog.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.Warn().Err(err).Msg("set QoS failed")
    }

    deliveries := make(chan amqp.Delivery)
    done := make(chan struct{})
    defer close(done)
    for _, key := range RoutingKeys {
        if _, err := ch.QueueDeclare(key, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", key, err)
        }
        msgs, err := ch.Consume(key, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", key, err)
        }
        go func(msgs <-chan amqp.Delivery) {
            for d := range msgs {
                select {
                case deliveries <- d:
                case <-done:
                    return
                }
            }
        }(msgs)
    }

    closed := conn.NotifyClose(make(chan *amqp.Error, 1))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case amqpErr := <-closed:
            if amqpErr != nil {
                return amqpErr
            }
            return errors.New("connection closed")
        case d := <-deliveries:
            if err := handleMessage(logger, d.RoutingKey, d.Body); err != nil {
                logger.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("handle message failed")
                _ = d.Nack(false, false) // do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// handleMessage decodes one event and writes it to the audit log.
func handleMessage(logger zerolog.Logger, routingKey string, body []byte) error {
    switch routingKey {
    case BookingCreated, BookingStatusChanged:
        var ev BookingEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal booking event: %w", err)
        }
        e := logger.Info().
            Str("event", routingKey).
            Uint64("booking_id", ev.BookingID).
            Uint64("gym_id", ev.GymID).
            Uint64("plan_id", ev.PlanID).
            Int64("amount_cents", ev.AmountCents).
            Str("status", ev.Status).
            Str("occurred_at", ev.OccurredAt)
        if ev.PreviousStatus != "" {
            e = e.Str("previous_status", ev.PreviousStatus)
        }
        if ev.UserID != nil {
            e = e.Uint64("user_id", *ev.UserID)
        }
        e.Msg("booking audit")
    case PayoutRequested, PayoutStatusChanged:
        var ev PayoutEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal payout event: %w", err)
        }
        logger.Info().
            Str("event", routingKey).
            Uint64("payout_id", ev.PayoutID).
            Uint64("gym_id", ev.GymID).
            Int64("amount_cents", ev.AmountCents).
            Str("status", ev.Status).
            Str("admin_note", ev.AdminNote).
            Str("occurred_at", ev.OccurredAt).
            Msg("payout audit")
    default:
        return fmt.Errorf("unknown routing key %q", routingKey)
    }
    return nil
}

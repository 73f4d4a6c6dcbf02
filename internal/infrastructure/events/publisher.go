package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"pharmapool.backend/internal/domain/entities"
	"pharmapool.backend/pkg/logger"
	"pharmapool.backend/pkg/redis"
)

const DefaultChannel = "pharmapool:wallet-events"

var publishMessage = redis.Publish

// RedisPublisher fans wallet events out over Redis pub/sub so chat
// services can notify participants.
type RedisPublisher struct {
	channel string
}

// NewRedisPublisher creates a publisher on the given channel
func NewRedisPublisher(channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{channel: channel}
}

// Publish encodes the event as JSON and publishes it
func (p *RedisPublisher) Publish(ctx context.Context, event *entities.WalletEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	receivers, err := publishMessage(ctx, p.channel, payload)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "Wallet event published",
		zap.String("channel", p.channel),
		zap.String("type", string(event.Type)),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// LogPublisher only logs events. Used when Redis is disabled.
type LogPublisher struct{}

// NewLogPublisher creates a log-only publisher
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

// Publish logs the event
func (p *LogPublisher) Publish(ctx context.Context, event *entities.WalletEvent) error {
	logger.Info(ctx, "Wallet event",
		zap.String("type", string(event.Type)),
		zap.String("wallet_address", event.WalletAddress),
		zap.String("reference", event.Reference),
	)
	return nil
}

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"cinema-server/shared/models"
)

const (
	ConfigUpdatesExchange     = "system_ai_config_updates"
	configUpdatesExchangeType = "fanout"
	configReloadTimeout       = 10 * time.Second
)

// ConfigUpdate - уведомление о смене ключа system_ai_config.
// Значение в сообщение не попадает: получатели перечитывают таблицу сами.
type ConfigUpdate struct {
	Key       string    `json:"key"`
	Origin    string    `json:"origin"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocalConfig - кэш настроек текущего экземпляра (configservice.ConfigService).
type LocalConfig interface {
	Update(cfg models.SystemAIConfig)
	Reload(ctx context.Context) error
}

// ConfigSync держит кэши system_ai_config согласованными между экземплярами сервиса.
// Update обновляет свой кэш и рассылает ключ в fanout exchange, остальные экземпляры делают Reload.
type ConfigSync struct {
	local       LocalConfig
	ch          *amqp091.Channel
	queueName   string
	instanceID  string
	consumerTag string
	logger      *zap.Logger
	mu          sync.Mutex
}

func NewConfigSync(conn *amqp091.Connection, local LocalConfig, logger *zap.Logger) (*ConfigSync, error) {
	if conn == nil {
		return nil, errors.New("rabbitmq connection is nil")
	}
	if local == nil {
		return nil, errors.New("local config is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel for config sync: %w", err)
	}
	if err := ch.ExchangeDeclare(ConfigUpdatesExchange, configUpdatesExchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", ConfigUpdatesExchange, err)
	}
	// Временная эксклюзивная очередь на каждый экземпляр, имя выдает брокер
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare config sync queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ConfigUpdatesExchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to bind queue %s to %s: %w", q.Name, ConfigUpdatesExchange, err)
	}

	instanceID := uuid.NewString()
	return &ConfigSync{
		local:       local,
		ch:          ch,
		queueName:   q.Name,
		instanceID:  instanceID,
		consumerTag: "config_sync_" + instanceID,
		logger:      logger.Named("ConfigSync").With(zap.String("queue", q.Name)),
	}, nil
}

// Update обновляет локальный кэш и уведомляет другие экземпляры. Ошибка рассылки только логируется.
func (s *ConfigSync) Update(cfg models.SystemAIConfig) {
	s.local.Update(cfg)

	body, err := json.Marshal(ConfigUpdate{Key: cfg.Key, Origin: s.instanceID, UpdatedAt: time.Now().UTC()})
	if err != nil {
		s.logger.Error("Failed to marshal config update", zap.String("key", cfg.Key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		s.logger.Warn("Config sync channel is closed, update not broadcast", zap.String("key", cfg.Key))
		return
	}
	err = s.ch.PublishWithContext(ctx, ConfigUpdatesExchange, "", false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
	if err != nil {
		s.logger.Error("Failed to broadcast config update", zap.String("key", cfg.Key), zap.Error(err))
		return
	}
	s.logger.Info("Config update broadcast", zap.String("key", cfg.Key))
}

// Start подписывается на рассылку и обрабатывает сообщения в фоне до отмены ctx или Close.
func (s *ConfigSync) Start(ctx context.Context) error {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	if ch == nil {
		return errors.New("config sync is closed")
	}

	deliveries, err := ch.Consume(s.queueName, s.consumerTag, false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register config sync consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					s.logger.Info("Config sync deliveries channel closed")
					return
				}
				s.handle(ctx, d.Body)
				if err := d.Ack(false); err != nil {
					s.logger.Error("Failed to ack config update", zap.Error(err))
				}
			}
		}
	}()
	s.logger.Info("Config sync consumer started")
	return nil
}

// handle перечитывает настройки, если обновление пришло от другого экземпляра.
// Битые сообщения подтверждаются и пропускаются.
func (s *ConfigSync) handle(ctx context.Context, body []byte) bool {
	var upd ConfigUpdate
	if err := json.Unmarshal(body, &upd); err != nil {
		s.logger.Warn("Invalid config update message", zap.Error(err))
		return false
	}
	if upd.Origin == s.instanceID {
		return false
	}

	reloadCtx, cancel := context.WithTimeout(ctx, configReloadTimeout)
	defer cancel()
	if err := s.local.Reload(reloadCtx); err != nil {
		s.logger.Error("Failed to reload config after remote update", zap.String("key", upd.Key), zap.Error(err))
		return false
	}
	s.logger.Info("Config reloaded after remote update", zap.String("key", upd.Key), zap.String("origin", upd.Origin))
	return true
}

func (s *ConfigSync) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil
	}
	_ = s.ch.Cancel(s.consumerTag, false)
	err := s.ch.Close()
	s.ch = nil
	return err
}

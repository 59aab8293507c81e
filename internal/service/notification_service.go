package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/aftersale-service/internal/config"
	"github.com/spec-kit/aftersale-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReturnCreated, n.handleEmailed)
	n.dispatcher.Subscribe(events.EventReturnStatusChanged, n.handleWebhooked)
	n.dispatcher.Subscribe(events.EventRepairStatusChanged, n.handleWebhooked)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEmailed)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleWebhooked)
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleEmailed)
	n.dispatcher.Subscribe(events.EventChatEnded, n.handleWebhooked)
	n.dispatcher.Subscribe(events.EventAppointmentBooked, n.handleEmailed)
	n.dispatcher.Subscribe(events.EventAppointmentRescheduled, n.handleEmailed)
	n.dispatcher.Subscribe(events.EventAppointmentCancelled, n.handleEmailed)
	n.dispatcher.Subscribe(events.EventFeedbackSubmitted, n.handleWebhooked)
}

func (n *NotificationService) handleEmailed(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("entity_id", event.EntityID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleWebhooked(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("entity_id", event.EntityID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}

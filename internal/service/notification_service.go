package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/config"
	"github.com/spec-kit/repair-service/internal/events"
)

// NotificationService emits customer notifications for job events. Delivery
// is fire-and-forget: failures are logged and never surfaced to the caller.
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
	n.dispatcher.Subscribe(events.EventJobCreated, n.handleJobCreated)
	n.dispatcher.Subscribe(events.EventJobStatusChanged, n.handleJobStatusChanged)
	n.dispatcher.Subscribe(events.EventJobReopened, n.handleJobStatusChanged)
	n.dispatcher.Subscribe(events.EventJobAssigned, n.handleJobAssigned)
	n.dispatcher.Subscribe(events.EventJobPaymentRecorded, n.handleJobPaymentRecorded)
}

func (n *NotificationService) handleJobCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("JobCreated", zap.Int64("job_id", event.JobID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.JobCreatedPayload); ok {
		n.sendToChannels(ctx, event, payload.NotificationMethods)
	}
	return nil
}

func (n *NotificationService) handleJobStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("JobStatusChanged", zap.Int64("job_id", event.JobID), zap.Any("payload", event.Payload))
	n.sendToChannels(ctx, event, nil)
	return nil
}

func (n *NotificationService) handleJobAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("JobAssigned", zap.Int64("job_id", event.JobID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleJobPaymentRecorded(ctx context.Context, event events.Event) error {
	n.logger.Info("JobPaymentRecorded", zap.Int64("job_id", event.JobID), zap.Any("payload", event.Payload))
	n.sendEmailStub(ctx, event)
	return nil
}

// sendToChannels fans out to the channels the customer opted into at intake.
// An empty method list means every configured channel.
func (n *NotificationService) sendToChannels(ctx context.Context, event events.Event, methods []string) {
	wants := func(channel string) bool {
		if len(methods) == 0 {
			return true
		}
		for _, m := range methods {
			if strings.EqualFold(strings.TrimSpace(m), channel) {
				return true
			}
		}
		return false
	}
	if wants("email") {
		n.sendEmailStub(ctx, event)
	}
	if wants("sms") {
		n.sendSMSStub(ctx, event)
	}
	if wants("whatsapp") {
		n.sendWhatsAppStub(ctx, event)
	}
}

func (n *NotificationService) sendEmailStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("job_id", event.JobID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendSMSStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.SMSGatewayURL) == "" {
		return
	}
	n.logger.Debug("sendSMSStub",
		zap.String("gateway", n.cfg.SMSGatewayURL),
		zap.Int64("job_id", event.JobID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWhatsAppStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WhatsAppAPIURL) == "" {
		return
	}
	n.logger.Debug("sendWhatsAppStub",
		zap.String("api", n.cfg.WhatsAppAPIURL),
		zap.Int64("job_id", event.JobID),
		zap.String("event_type", string(event.Type)))
}

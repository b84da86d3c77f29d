package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/vendor-signup-service/internal/config"
	"github.com/spec-kit/vendor-signup-service/internal/events"
)

// Mailer delivers a composed message.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

const handoffQueueSize = 64

// ErrHandoffQueueFull is returned when hand-offs arrive faster than the worker sends them.
var ErrHandoffQueueFull = errors.New("vendor hand-off queue full")

type handoffJob struct {
	requestID string
	payload   events.VendorHandoffPayload
}

// NotificationService hands approved applicants to vendor onboarding and logs
// the remaining workflow events. Hand-off emails are queued by the event
// handler and sent by Run, so SMTP latency never reaches the HTTP request.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	mailer     Mailer
	handoffs   chan handoffJob
}

// NewNotificationService creates the service. An SMTP dialer is built when
// SMTP_HOST is configured and no mailer is supplied.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, mailer Mailer) *NotificationService {
	if mailer == nil && strings.TrimSpace(cfg.SMTPHost) != "" {
		mailer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		mailer:     mailer,
		handoffs:   make(chan handoffJob, handoffQueueSize),
	}
}

// Run sends queued hand-off emails until ctx is done. Jobs still queued at
// that point are sent before Run returns.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case job := <-n.handoffs:
			n.deliver(job)
		case <-ctx.Done():
			for {
				select {
				case job := <-n.handoffs:
					n.deliver(job)
				default:
					return
				}
			}
		}
	}
}

func (n *NotificationService) deliver(job handoffJob) {
	if err := n.sendVendorHandoffEmail(job.requestID, job.payload); err != nil {
		n.logger.Error("vendor hand-off failed", zap.String("request_id", job.requestID), zap.Error(err))
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSignupRequestSubmitted, n.handleStatusEvent)
	n.dispatcher.Subscribe(events.EventSignupRequestApproved, n.handleStatusEvent)
	n.dispatcher.Subscribe(events.EventSignupRequestRejected, n.handleStatusEvent)
	n.dispatcher.Subscribe(events.EventSignupRequestSentToVendor, n.handleSentToVendor)
}

func (n *NotificationService) handleStatusEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSentToVendor(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VendorHandoffPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("vendor hand-off queued", zap.String("request_id", event.RequestID), zap.String("email", payload.Email))
	n.sendWebhookNotificationStub(ctx, event)
	select {
	case n.handoffs <- handoffJob{requestID: event.RequestID, payload: payload}:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s", ErrHandoffQueueFull, event.RequestID)
	}
}

func (n *NotificationService) sendVendorHandoffEmail(requestID string, payload events.VendorHandoffPayload) error {
	to := strings.TrimSpace(n.cfg.VendorOnboardingEmail)
	if to == "" || n.mailer == nil {
		n.logger.Debug("vendor hand-off email skipped", zap.String("request_id", requestID))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.EmailFrom)
	m.SetHeader("To", to)
	m.SetHeader("Reply-To", payload.Email)
	m.SetHeader("Subject", fmt.Sprintf("New vendor onboarding: %s", payload.FullName))
	m.SetBody("text/plain", handoffBody(requestID, payload))

	if err := n.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("send vendor hand-off for %s: %w", requestID, err)
	}
	n.logger.Info("vendor hand-off email sent", zap.String("request_id", requestID), zap.String("to", to))
	return nil
}

func handoffBody(requestID string, p events.VendorHandoffPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Signup request %s has been approved for vendor onboarding.\n\n", requestID)
	fmt.Fprintf(&b, "Name: %s\n", p.FullName)
	fmt.Fprintf(&b, "Email: %s\n", p.Email)
	if p.PhoneNumber != "" {
		fmt.Fprintf(&b, "Phone: %s\n", p.PhoneNumber)
	}
	fmt.Fprintf(&b, "Address: %s\n", p.Address)
	if p.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", p.CompanyName)
	}
	if p.ReasonForSignup != "" {
		fmt.Fprintf(&b, "Reason: %s\n", p.ReasonForSignup)
	}
	fmt.Fprintf(&b, "Requested: %s\n", p.RequestedDate.Format("2006-01-02 15:04 MST"))
	return b.String()
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}

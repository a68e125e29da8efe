package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/email"
)

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Mailer is satisfied by *email.EmailService.
type Mailer interface {
	SendDecision(ctx context.Context, data email.DecisionEmailData) error
}

// DecisionNotifier publishes registration.<decision> events and emails the
// applicant. Either collaborator may be nil.
type DecisionNotifier struct {
	publisher EventPublisher
	mailer    Mailer
}

func NewDecisionNotifier(publisher EventPublisher, mailer Mailer) *DecisionNotifier {
	return &DecisionNotifier{publisher: publisher, mailer: mailer}
}

func RoutingKey(status domain.RegistrationStatus) string {
	return "registration." + strings.ToLower(string(status))
}

// NotifyDecision attempts both deliveries and joins their errors.
func (n *DecisionNotifier) NotifyDecision(ctx context.Context, d domain.RegistrationDecision) error {
	var errs []error

	if n.publisher != nil {
		if err := n.publisher.PublishJSON(ctx, RoutingKey(d.Status), d); err != nil {
			errs = append(errs, fmt.Errorf("publish decision event: %w", err))
		}
	}

	if n.mailer != nil {
		err := n.mailer.SendDecision(ctx, email.DecisionEmailData{
			To:       d.Email,
			Name:     d.Name,
			Kind:     string(d.Kind),
			Approved: d.Status == domain.RegistrationApproved,
			Reason:   d.Reason,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("send decision email: %w", err))
		}
	}

	return errors.Join(errs...)
}

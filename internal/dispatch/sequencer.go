// Package dispatch sequences the template opener and the status text for one
// notification and folds both provider answers into a single outcome.
package dispatch

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"wanotif/internal/compose"
	"wanotif/internal/domain"
	"wanotif/internal/observability"
	"wanotif/internal/providers/whatsapp"
	"wanotif/internal/util"
)

type Sender interface {
	Send(ctx context.Context, to string, payload domain.MessagePayload) (whatsapp.Response, error)
	CheckConfig() error
}

// Publisher receives every finished outcome. Failures are logged only.
type Publisher interface {
	PublishOutcome(ctx context.Context, out domain.DispatchOutcome) error
}

// Policy turns optional project fields into required ones.
type Policy struct {
	RequireDescription  bool
	RequireDeliveryDate bool
}

type Sequencer struct {
	Sender    Sender
	Composer  compose.Composer
	Policy    Policy
	Guard     *Guard
	Publisher Publisher
	Logger    *slog.Logger
	IDGen     func() string
}

// Preflight reports missing provider configuration. It runs before any
// input is looked at.
func (s *Sequencer) Preflight() *domain.Error {
	if s.Sender == nil {
		return domain.Configuration("whatsapp sender not configured")
	}
	if err := s.Sender.CheckConfig(); err != nil {
		e := domain.Configuration(err.Error())
		e.Err = err
		return e
	}
	return nil
}

// Dispatch always sends the template first: the recipient may be outside the
// 24h session window, where free text is refused. The text is only attempted
// after the template was accepted, and its failure makes the outcome partial,
// not failed.
func (s *Sequencer) Dispatch(ctx context.Context, req domain.NotificationRequest) domain.DispatchOutcome {
	out := domain.DispatchOutcome{DispatchID: s.newID(), Responses: []domain.ProviderResponse{}}
	log := s.logger().With("dispatch_id", out.DispatchID)

	if err := s.Preflight(); err != nil {
		out.Error = err
		s.finish(ctx, log, &out)
		return out
	}

	contact, project, verr := s.Policy.Normalize(req)
	if verr != nil {
		out.Error = verr
		s.finish(ctx, log, &out)
		return out
	}
	log = log.With("to", util.MaskPhone(contact.Phone))
	if !util.IsCanonical(contact.Phone) {
		log.Warn("phone_not_canonical", "digits", len(contact.Phone), "plausible", util.PhonePlausible(contact.Phone))
	}

	tmpl := s.send(ctx, log, contact.Phone, s.Composer.ComposeTemplate(contact, project))
	out.Responses = append(out.Responses, tmpl)
	if tmpl.Error != nil {
		out.Error = tmpl.Error
		s.finish(ctx, log, &out)
		return out
	}

	text := s.send(ctx, log, contact.Phone, s.Composer.ComposeText(contact, project))
	out.Responses = append(out.Responses, text)
	out.Success = true
	out.Partial = text.Error != nil
	s.finish(ctx, log, &out)
	return out
}

// Normalize turns a request into the contact and project that get composed,
// applying the policy's required fields.
func (p Policy) Normalize(req domain.NotificationRequest) (domain.Contact, domain.Project, *domain.Error) {
	phone, ok := util.NormalizePhone(req.Phone)
	if !ok {
		return domain.Contact{}, domain.Project{}, domain.Validation("recipient phone missing")
	}
	contact := domain.Contact{Name: strings.TrimSpace(req.Name), Phone: phone}

	project := domain.Project{
		Description:     strings.TrimSpace(req.Description),
		MaintenanceName: strings.TrimSpace(req.MaintenanceName),
	}
	if p.RequireDescription && project.Description == "" {
		return domain.Contact{}, domain.Project{}, domain.Validation("project description missing")
	}
	if d, ok := util.NormalizeDate(req.DeliveryDate); ok {
		project.Delivery = d
	} else if p.RequireDeliveryDate {
		return domain.Contact{}, domain.Project{}, domain.Validation("delivery date missing or unparseable")
	}
	if d, ok := util.NormalizeDate(req.MaintenanceDate); ok {
		project.Maintenance = &d
	}
	return contact, project, nil
}

func (s *Sequencer) send(ctx context.Context, log *slog.Logger, to domain.CanonicalPhone, payload domain.MessagePayload) domain.ProviderResponse {
	kind := payload.Kind()
	start := time.Now()
	resp, err := s.Guard.Do(ctx, func(ctx context.Context) (whatsapp.Response, error) {
		return s.Sender.Send(ctx, string(to), payload)
	})
	observability.WhatsAppLatency.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	pr := domain.ProviderResponse{Kind: kind, StatusCode: resp.StatusCode, Body: resp.Body}
	switch {
	case err != nil:
		pr.Error = domain.Transport(err)
		observability.WhatsAppSend.WithLabelValues(string(kind), "transport_error", strconv.Itoa(resp.StatusCode)).Inc()
		log.Error("whatsapp send failed", "kind", kind, "err", err)
	case !resp.OK():
		pr.Error = domain.Rejection(resp.StatusCode, resp.ErrorMessage(), resp.Body)
		observability.WhatsAppSend.WithLabelValues(string(kind), "rejected", strconv.Itoa(resp.StatusCode)).Inc()
		log.Warn("whatsapp send rejected", "kind", kind, "http_status", resp.StatusCode, "reason", pr.Error.Message)
	default:
		observability.WhatsAppSend.WithLabelValues(string(kind), "ok", strconv.Itoa(resp.StatusCode)).Inc()
		log.Info("whatsapp send ok", "kind", kind, "http_status", resp.StatusCode, "wamid", resp.MessageID())
	}
	return pr
}

func (s *Sequencer) finish(ctx context.Context, log *slog.Logger, out *domain.DispatchOutcome) {
	result := "ok"
	switch {
	case out.Error != nil:
		result = string(out.Error.Kind)
	case out.Partial:
		result = "partial"
	}
	observability.Dispatches.WithLabelValues(result).Inc()

	if out.Error != nil {
		log.Info("dispatch finished", "result", result, "err", out.Error.Message, "sends", len(out.Responses))
	} else {
		log.Info("dispatch finished", "result", result, "sends", len(out.Responses))
	}

	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishOutcome(ctx, *out); err != nil {
		observability.OutcomePublish.WithLabelValues("error").Inc()
		log.Error("publish outcome failed", "err", err)
		return
	}
	observability.OutcomePublish.WithLabelValues("ok").Inc()
}

func (s *Sequencer) newID() string {
	if s.IDGen != nil {
		return s.IDGen()
	}
	return util.NewDispatchID()
}

func (s *Sequencer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

package domain

import (
	"encoding/json"
	"strings"
)

// NoDate is rendered wherever a date line is structurally required but no usable date exists.
const NoDate = "—"

// DefaultContactName is used when the payload carries no recipient name.
const DefaultContactName = "Cliente"

// NotificationRequest is the adapted, not yet normalized, input of one dispatch.
type NotificationRequest struct {
	CustomerID      string `json:"customerId,omitempty"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Description     string `json:"description,omitempty"`
	DeliveryDate    string `json:"deliveryDate,omitempty"`
	MaintenanceName string `json:"maintenanceName,omitempty"`
	MaintenanceDate string `json:"maintenanceDate,omitempty"`
}

// CanonicalPhone holds digits only, carrying the 55 country code when the
// national number had a recognizable length.
type CanonicalPhone string

type Contact struct {
	Name  string
	Phone CanonicalPhone
}

// CanonicalDate is a calendar date in ISO form. The zero value means "no date".
type CanonicalDate struct {
	ISO string
}

// Display reverses the ISO components into DD/MM/YYYY.
func (d CanonicalDate) Display() string {
	parts := strings.Split(d.ISO, "-")
	if len(parts) != 3 {
		return NoDate
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

func (d CanonicalDate) IsZero() bool { return d.ISO == "" }

type Project struct {
	Description     string
	Delivery        CanonicalDate
	MaintenanceName string
	Maintenance     *CanonicalDate
}

type MessageKind string

const (
	KindTemplate MessageKind = "template"
	KindText     MessageKind = "text"
)

// MessagePayload is implemented by TemplateMessage and TextMessage only.
type MessagePayload interface {
	Kind() MessageKind
	isPayload()
}

type TemplateMessage struct {
	Name           string
	LanguageCode   string
	BodyParameters []string
}

func (TemplateMessage) Kind() MessageKind { return KindTemplate }
func (TemplateMessage) isPayload()        {}

type TextMessage struct {
	Body string
}

func (TextMessage) Kind() MessageKind { return KindText }
func (TextMessage) isPayload()        {}

// ProviderResponse records one provider call in send order.
type ProviderResponse struct {
	Kind       MessageKind     `json:"kind"`
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body,omitempty"`
	Error      *Error          `json:"error,omitempty"`
}

// OK reports whether the call reached the provider and was accepted.
func (r ProviderResponse) OK() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// DispatchOutcome is the single value returned for one notification attempt.
// Partial is set when the template went out and the text did not.
type DispatchOutcome struct {
	DispatchID string             `json:"dispatchId"`
	Success    bool               `json:"success"`
	Partial    bool               `json:"partial,omitempty"`
	Responses  []ProviderResponse `json:"providerResponses"`
	Error      *Error             `json:"error,omitempty"`
}

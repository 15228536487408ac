// Package intake turns the loosely shaped payloads callers send into a
// NotificationRequest, resolving field aliases and, optionally, the customer
// record.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"wanotif/internal/domain"
	"wanotif/internal/store"
)

type field int

const (
	fieldCustomerID field = iota
	fieldName
	fieldPhone
	fieldDescription
	fieldDeliveryDate
	fieldMaintenanceName
	fieldMaintenanceDate
)

// aliases lists accepted keys per logical field, first match wins.
var aliases = map[field][]string{
	fieldCustomerID:      {"customerId", "customer_id", "clienteId", "cliente_id", "uid"},
	fieldName:            {"name", "nome", "cliente", "clienteNome"},
	fieldPhone:           {"phone", "clienteTelefone", "telefone", "to"},
	fieldDescription:     {"description", "obra", "descricao", "projectDescription"},
	fieldDeliveryDate:    {"deliveryDate", "dataEntrega", "data_entrega_obra", "data_entrega"},
	fieldMaintenanceName: {"maintenanceName", "manutencao", "manutencaoNome", "nomeManutencao"},
	fieldMaintenanceDate: {"maintenanceDate", "dataManutencao", "data_manutencao"},
}

// Lookup resolves a customer record by id.
type Lookup interface {
	GetCustomer(ctx context.Context, id string) (store.Customer, error)
}

// ErrCustomerNotFound is returned when a lookup was requested and found nothing.
var ErrCustomerNotFound = errors.New("customer not found")

type Adapter struct {
	Lookup Lookup
}

// Decode parses a JSON object payload. Numbers are kept verbatim so phone
// numbers sent as JSON numbers survive.
func Decode(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Adapt maps raw into a request. customerID, when non-empty, overrides any id
// present in the payload.
func (a *Adapter) Adapt(ctx context.Context, raw map[string]any, customerID string) (domain.NotificationRequest, error) {
	req := domain.NotificationRequest{
		CustomerID:      pick(raw, fieldCustomerID),
		Name:            pick(raw, fieldName),
		Phone:           pick(raw, fieldPhone),
		Description:     pick(raw, fieldDescription),
		DeliveryDate:    pick(raw, fieldDeliveryDate),
		MaintenanceName: pick(raw, fieldMaintenanceName),
		MaintenanceDate: pick(raw, fieldMaintenanceDate),
	}
	if customerID != "" {
		req.CustomerID = customerID
	}
	if req.CustomerID == "" || a == nil || a.Lookup == nil {
		return req, nil
	}

	rec, err := a.Lookup.GetCustomer(ctx, req.CustomerID)
	if errors.Is(err, store.ErrNotFound) {
		return req, fmt.Errorf("%w: %s", ErrCustomerNotFound, req.CustomerID)
	}
	if err != nil {
		return req, fmt.Errorf("lookup customer %s: %w", req.CustomerID, err)
	}
	// the stored record is authoritative for identity fields
	if rec.Name != "" {
		req.Name = rec.Name
	}
	if rec.Phone != "" {
		req.Phone = rec.Phone
	}
	return req, nil
}

func pick(raw map[string]any, f field) string {
	for _, key := range aliases[f] {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

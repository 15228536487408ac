package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"wanotif/internal/domain"
	"wanotif/internal/intake"
)

const maxBodyBytes = 1 << 20

type Dispatcher interface {
	Preflight() *domain.Error
	Dispatch(ctx context.Context, req domain.NotificationRequest) domain.DispatchOutcome
}

type API struct {
	Seq    Dispatcher
	Intake *intake.Adapter
}

func (a *API) Register(m *mux.Router) {
	m.HandleFunc("/v1/notifications/whatsapp", a.handleNotify).Methods(http.MethodPost)
	m.HandleFunc("/v1/customers/{id}/notifications/whatsapp", a.handleNotifyCustomer).Methods(http.MethodPost)
}

func (a *API) handleNotify(w http.ResponseWriter, r *http.Request) {
	a.notify(w, r, "")
}

func (a *API) handleNotifyCustomer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, ErrMissingCustomerID)
		return
	}
	// without a record store the id cannot be honored; never fall back to the payload phone
	if a.Intake == nil || a.Intake.Lookup == nil {
		writeError(w, http.StatusServiceUnavailable, ErrNoRecordStore)
		return
	}
	a.notify(w, r, id)
}

func (a *API) notify(w http.ResponseWriter, r *http.Request, customerID string) {
	// misconfiguration wins over anything wrong with the payload
	if perr := a.Seq.Preflight(); perr != nil {
		slog.Error("whatsapp not configured", "err", perr.Message)
		writeJSON(w, http.StatusServiceUnavailable, domain.DispatchOutcome{Responses: []domain.ProviderResponse{}, Error: perr})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}
	raw, err := intake.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	req, err := a.Intake.Adapt(r.Context(), raw, customerID)
	if errors.Is(err, intake.ErrCustomerNotFound) {
		writeError(w, http.StatusNotFound, ErrCustomerNotFound)
		return
	}
	if err != nil {
		slog.Error("customer lookup failed", "err", err, "customer_id", customerID)
		writeError(w, http.StatusBadGateway, ErrDependency)
		return
	}

	out := a.Seq.Dispatch(r.Context(), req)
	writeJSON(w, statusFor(out), out)
}

// statusFor maps an outcome onto the HTTP status the caller sees.
func statusFor(out domain.DispatchOutcome) int {
	if out.Error == nil {
		return http.StatusOK
	}
	switch out.Error.Kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConfiguration:
		return http.StatusServiceUnavailable
	case domain.KindRejection:
		if out.Error.StatusCode >= 400 && out.Error.StatusCode <= 599 {
			return out.Error.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

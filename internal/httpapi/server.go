package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wanotif/internal/observability"
)

type Server struct {
	Mux *mux.Router
}

func New() *Server {
	m := mux.NewRouter()
	m.Use(Metrics(observability.APIRequests))
	m.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return &Server{Mux: m}
}

// Handler is the outermost handler; CORS sits outside the router so
// preflight requests never reach route matching.
func (s *Server) Handler() http.Handler {
	return CORS(Logging(s.Mux))
}

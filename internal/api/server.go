package api

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/weatherscreen/internal/models"
	"github.com/lox/weatherscreen/internal/store"
)

// ViewSource supplies the latest ViewModel.
type ViewSource interface {
	Snapshot() models.ViewModel
}

type Server struct {
	view    ViewSource
	journal *store.Store
	port    string
	tmpl    *template.Template
}

// NewServer renders views from view. journal may be nil.
func NewServer(view ViewSource, journal *store.Store, port string) *Server {
	return &Server{
		view:    view,
		journal: journal,
		port:    port,
		tmpl:    newTemplates(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/chart.png", s.handleChartImage)
	mux.HandleFunc("/api/view", s.handleAPIView)
	mux.HandleFunc("/api/fetches", s.handleAPIFetches)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

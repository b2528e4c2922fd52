package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

const defaultFetchLimit = 50

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	vm := s.view.Snapshot()
	status := "loading"
	switch {
	case vm.Halted():
		status = "halted"
	case vm.Loaded():
		status = "ok"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"has_chart": !vm.Chart.Empty(),
	})
}

func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.view.Snapshot())
}

type fetchJSON struct {
	ID         int64      `json:"id"`
	Kind       string     `json:"kind"`
	Target     string     `json:"target,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	HTTPStatus int64      `json:"http_status,omitempty"`
	Records    int64      `json:"records,omitempty"`
	Success    bool       `json:"success"`
	Error      string     `json:"error,omitempty"`
}

func (s *Server) handleAPIFetches(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "fetch journal disabled", http.StatusNotFound)
		return
	}

	limit := defaultFetchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	fetches, err := s.journal.RecentFetches(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	summaries, err := s.journal.Summaries()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]fetchJSON, 0, len(fetches))
	for _, f := range fetches {
		fj := fetchJSON{
			ID:         f.ID,
			Kind:       f.Kind,
			Target:     f.Target.String,
			StartedAt:  f.StartedAt,
			HTTPStatus: f.HTTPStatus.Int64,
			Records:    f.Records.Int64,
			Success:    f.Success,
			Error:      f.ErrorMessage.String,
		}
		if f.FinishedAt.Valid {
			t := f.FinishedAt.Time
			fj.FinishedAt = &t
		}
		out = append(out, fj)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"fetches":   out,
		"summaries": summaries,
	})
}

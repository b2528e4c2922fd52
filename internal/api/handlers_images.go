package api

import (
	"log"
	"net/http"

	"github.com/lox/weatherscreen/internal/imagegen"
)

func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	vm := s.view.Snapshot()
	if vm.Chart.Empty() {
		http.NotFound(w, r)
		return
	}

	data, err := imagegen.RenderChart(vm.Chart)
	if err != nil {
		log.Printf("render chart: %v", err)
		http.Error(w, "render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

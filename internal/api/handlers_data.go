package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/dgallion1/docsplit/internal/report"
	"github.com/dgallion1/docsplit/internal/segment"
)

// handleRecords serves the topic records of the latest completed batch
// run, optionally filtered by gen or subject.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	var records []segment.TopicRecord
	if err := report.LoadJSON(report.TopicsPath(s.cfg.DataDir), &records); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "no records yet, run a batch first", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to load records: "+err.Error(), http.StatusInternalServerError)
		return
	}

	gen := r.URL.Query().Get("gen")
	subject := r.URL.Query().Get("subject")
	if gen != "" || subject != "" {
		filtered := make([]segment.TopicRecord, 0, len(records))
		for _, rec := range records {
			if gen != "" && rec.Gen != gen {
				continue
			}
			if subject != "" && rec.Subject != subject {
				continue
			}
			filtered = append(filtered, rec)
		}
		records = filtered
	}
	if records == nil {
		records = []segment.TopicRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":   len(records),
		"records": records,
	})
}

// handleReport renders the analysis report as HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	md, err := os.ReadFile(report.AnalysisPath(s.cfg.DataDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "no analysis report yet", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to read report: "+err.Error(), http.StatusInternalServerError)
		return
	}
	html, err := report.RenderMarkdown(md)
	if err != nil {
		jsonError(w, "failed to render report: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"documents":   s.orchestrator.Stats(),
	})
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netlens/netlens/pkg/summary"
)

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.mgr.ListDevices(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	rec, err := s.mgr.GetDevice(chi.URLParam(r, "pid"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.DeleteDevice(chi.URLParam(r, "pid"), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeviceConfigs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.mgr.DeviceConfigs(chi.URLParam(r, "pid"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

type putImageRequest struct {
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

func (s *Server) handlePutDeviceImage(w http.ResponseWriter, r *http.Request) {
	var req putImageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	img, err := s.mgr.PutDeviceImage(chi.URLParam(r, "pid"), chi.URLParam(r, "name"),
		req.ContentType, req.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (s *Server) handleGetDeviceImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.mgr.GetDeviceImage(chi.URLParam(r, "pid"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// --- Summary views ---

func (s *Server) handleConfigSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := summary.NewProjector(s.mgr.Store()).Rows(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleConfigSummaryExport(w http.ResponseWriter, r *http.Request) {
	rows, err := summary.NewProjector(s.mgr.Store()).Rows(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="config-summary.csv"`)
	if err := summary.WriteCSV(w, rows); err != nil {
		writeError(w, err)
	}
}

func (s *Server) handleSummaryMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := summary.NewProjector(s.mgr.Store()).Metrics(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netlens/netlens/pkg/manager"
	"github.com/netlens/netlens/pkg/storage"
	"github.com/netlens/netlens/pkg/types"
)

// Route segments map onto analysis kinds; project and device scopes use
// different vocabularies.
var projectKinds = map[string]types.AnalysisKind{
	"overview":        types.KindProjectOverview,
	"recommendations": types.KindProjectRecommendations,
	"topology":        types.KindProjectTopology,
}

var deviceKinds = map[string]types.AnalysisKind{
	"overview":        types.KindDeviceOverview,
	"recommendations": types.KindDeviceRecommendations,
	"config-drift":    types.KindDeviceConfigDrift,
}

func kindParam(r *http.Request, table map[string]types.AnalysisKind) (types.AnalysisKind, error) {
	segment := chi.URLParam(r, "kind")
	kind, ok := table[segment]
	if !ok {
		return "", fmt.Errorf("%w: unknown analysis kind %q", manager.ErrValidation, segment)
	}
	return kind, nil
}

func (s *Server) submitAnalysis(w http.ResponseWriter, projectID string, kind types.AnalysisKind, deviceName string) {
	if err := s.analysis.Submit(projectID, kind, deviceName); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"kind":   string(kind),
	})
}

func (s *Server) handleSubmitProjectAnalysis(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r, projectKinds)
	if err != nil {
		writeError(w, err)
		return
	}
	s.submitAnalysis(w, chi.URLParam(r, "pid"), kind, "")
}

func (s *Server) handleSubmitDeviceAnalysis(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r, deviceKinds)
	if err != nil {
		writeError(w, err)
		return
	}
	s.submitAnalysis(w, chi.URLParam(r, "pid"), kind, chi.URLParam(r, "name"))
}

func (s *Server) getArtifact(w http.ResponseWriter, projectID string, kind types.AnalysisKind, deviceName string) {
	artifact, err := s.analysis.Get(projectID, kind, deviceName)
	if err != nil {
		writeError(w, err)
		return
	}
	if artifact == nil {
		writeError(w, fmt.Errorf("no %s artifact yet: %w", kind, storage.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

func (s *Server) handleGetProjectArtifact(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r, projectKinds)
	if err != nil {
		writeError(w, err)
		return
	}
	s.getArtifact(w, chi.URLParam(r, "pid"), kind, "")
}

func (s *Server) handleGetDeviceArtifact(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r, deviceKinds)
	if err != nil {
		writeError(w, err)
		return
	}
	s.getArtifact(w, chi.URLParam(r, "pid"), kind, chi.URLParam(r, "name"))
}

type fullAnalysisResponse struct {
	Artifacts []*types.AnalysisArtifact `json:"artifacts"`
	InFlight  *types.InFlightMarker     `json:"in_flight,omitempty"`
}

func (s *Server) handleFullAnalysis(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "pid")
	artifacts, err := s.analysis.Full(projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	marker, err := s.analysis.InFlight(projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fullAnalysisResponse{Artifacts: artifacts, InFlight: marker})
}

type verifyRequest struct {
	VerifiedJSON json.RawMessage      `json:"verified_json"`
	Comments     string               `json:"comments"`
	Status       types.ArtifactStatus `json:"status"`
}

func (s *Server) verifyArtifact(w http.ResponseWriter, r *http.Request, kind types.AnalysisKind, deviceName string) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Status != types.StatusVerified && req.Status != types.StatusRejected {
		writeError(w, fmt.Errorf("%w: status must be verified or rejected", manager.ErrValidation))
		return
	}
	artifact, err := s.analysis.Verify(chi.URLParam(r, "pid"), kind, deviceName,
		req.VerifiedJSON, req.Comments, callerFrom(r.Context()).Username, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

func (s *Server) handleVerifyProjectAnalysis(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r, projectKinds)
	if err != nil {
		writeError(w, err)
		return
	}
	s.verifyArtifact(w, r, kind, "")
}

func (s *Server) handleVerifyDeviceAnalysis(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r, deviceKinds)
	if err != nil {
		writeError(w, err)
		return
	}
	s.verifyArtifact(w, r, kind, chi.URLParam(r, "name"))
}

// --- Topology ---

func (s *Server) handleGetTopology(w http.ResponseWriter, r *http.Request) {
	view, err := s.mgr.Topology().Get(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleNetworkTopology(w http.ResponseWriter, r *http.Request) {
	view, err := s.mgr.Topology().NetworkTopology(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type saveLayoutRequest struct {
	Positions map[string]types.Position   `json:"positions"`
	Links     []types.TopologyLink        `json:"links"`
	Labels    map[string]string           `json:"node_labels"`
	Roles     map[string]types.DeviceRole `json:"node_roles"`
}

func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	var req saveLayoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	state, err := s.mgr.SaveTopologyLayout(chi.URLParam(r, "pid"),
		req.Positions, req.Links, req.Labels, req.Roles)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

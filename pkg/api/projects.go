package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netlens/netlens/pkg/manager"
	"github.com/netlens/netlens/pkg/types"
)

// Version is stamped via ldflags at build time.
var Version = "dev"

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	c := callerFrom(r.Context())
	projects, err := s.mgr.ListProjectsFor(c.Username, c.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

type createProjectRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Visibility  types.Visibility `json:"visibility"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	project, err := s.mgr.CreateProject(req.Name, req.Description, req.Visibility, callerFrom(r.Context()).Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.mgr.GetProject(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

type updateProjectRequest struct {
	Name           *string           `json:"name"`
	Description    *string           `json:"description"`
	Visibility     *types.Visibility `json:"visibility"`
	TopoURL        *string           `json:"topo_url"`
	BackupInterval *string           `json:"backup_interval"`
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	project, err := s.mgr.UpdateProject(chi.URLParam(r, "pid"), manager.ProjectPatch{
		Name:           req.Name,
		Description:    req.Description,
		Visibility:     req.Visibility,
		TopoURL:        req.TopoURL,
		BackupInterval: req.BackupInterval,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.DeleteProject(chi.URLParam(r, "pid")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Members ---

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.mgr.ListMembers(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type memberRequest struct {
	Username string     `json:"username"`
	Role     types.Role `json:"role"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	member, err := s.mgr.AddMember(chi.URLParam(r, "pid"), req.Username, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	member, err := s.mgr.UpdateMemberRole(chi.URLParam(r, "pid"), chi.URLParam(r, "username"), req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.RemoveMember(chi.URLParam(r, "pid"), chi.URLParam(r, "username")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Folders ---

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.mgr.ListFolders(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	folder, err := s.mgr.CreateFolder(chi.URLParam(r, "pid"), req.Name, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

type patchFolderRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parent_id"`
	Reparent bool    `json:"reparent"`
}

func (s *Server) handlePatchFolder(w http.ResponseWriter, r *http.Request) {
	var req patchFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	folder, err := s.mgr.RenameFolder(chi.URLParam(r, "pid"), chi.URLParam(r, "fid"),
		req.Name, req.ParentID, req.Reparent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.DeleteFolder(chi.URLParam(r, "pid"), chi.URLParam(r, "fid")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Options ---

func (s *Server) handleListOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.mgr.ListOptions(chi.URLParam(r, "pid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

type addOptionRequest struct {
	Category types.OptionCategory `json:"category"`
	Value    string               `json:"value"`
}

func (s *Server) handleAddOption(w http.ResponseWriter, r *http.Request) {
	var req addOptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.mgr.AddOption(chi.URLParam(r, "pid"), req.Category, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

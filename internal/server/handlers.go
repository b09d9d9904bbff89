package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"
	"agentcanvas/internal/project"

	sigsyaml "sigs.k8s.io/yaml"
)

// errorPayload is the JSON body of every non-2xx response.
type errorPayload struct {
	Error string `json:"error"`

	// Line is set for YAML parse failures.
	Line int `json:"line,omitempty"`

	// BrokenReferences is set when the execute gate refuses.
	BrokenReferences []api.BrokenReference `json:"brokenReferences,omitempty"`

	// CycleMembers is set for cycle errors.
	CycleMembers []string `json:"cycleMembers,omitempty"`
}

// writeError maps typed engine errors to status codes and structured payloads.
func writeError(w http.ResponseWriter, err error) {
	payload := errorPayload{Error: err.Error()}
	status := http.StatusInternalServerError

	var malformed *api.MalformedYAMLError
	var cycle *api.CycleDetectedError
	var refused *api.ExecuteRefusedError

	switch {
	case api.IsNotFound(err):
		status = http.StatusNotFound
	case api.IsNameConflict(err):
		status = http.StatusConflict
	case api.IsInvalidName(err):
		status = http.StatusBadRequest
	case errors.As(err, &malformed):
		status = http.StatusBadRequest
		payload.Line = malformed.Line
	case api.IsOutOfRange(err):
		status = http.StatusBadRequest
	case errors.As(err, &cycle):
		status = http.StatusUnprocessableEntity
		payload.CycleMembers = cycle.Members
	case errors.As(err, &refused):
		status = http.StatusUnprocessableEntity
		payload.BrokenReferences = refused.Broken
	}

	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) manager(w http.ResponseWriter, r *http.Request) (*project.Manager, bool) {
	manager, err := s.registry.Get(r.PathValue("project"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return manager, true
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.registry.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"projects": names})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		http.Error(w, "request body must carry a project name", http.StatusBadRequest)
		return
	}

	if _, err := s.registry.Create(body.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": body.Name})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]api.AgentFile{"agents": manager.ListFiles()})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}

	file, err := manager.GetFile(r.PathValue("file"))
	if err != nil {
		writeError(w, err)
		return
	}

	// The JSON view converts the parsed document for structured consumers.
	if r.URL.Query().Get("format") == "json" {
		if !file.Valid {
			writeError(w, api.NewMalformedYAMLError(file.FileName, file.Raw, 0, file.ParseError))
			return
		}
		converted, err := sigsyaml.YAMLToJSON([]byte(file.Raw))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(converted)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

func (s *Server) handlePutAgent(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	file, err := manager.PutFile(r.PathValue("file"), raw)
	if err != nil {
		// A malformed body is persisted regardless; the payload echoes the
		// saved file alongside the parse failure.
		var malformed *api.MalformedYAMLError
		if errors.As(err, &malformed) {
			writeJSON(w, http.StatusBadRequest, struct {
				errorPayload
				File api.AgentFile `json:"file"`
			}{
				errorPayload: errorPayload{Error: err.Error(), Line: malformed.Line},
				File:         file,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}

	var body struct {
		Name  string `json:"name"`
		Class string `json:"class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		http.Error(w, "request body must carry an agent name", http.StatusBadRequest)
		return
	}

	class := agentconfig.AgentClass(body.Class)
	if body.Class == "" {
		class = agentconfig.ClassLlmAgent
	}
	if !class.Valid() {
		http.Error(w, "unknown agent class "+body.Class, http.StatusBadRequest)
		return
	}

	file, err := manager.CreateAgent(body.Name, class)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}

	if err := manager.DeleteFile(r.PathValue("file")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// connectionBody is shared by connect and reorder requests.
type connectionBody struct {
	Parent   string `json:"parent"`
	Child    string `json:"child"`
	NewIndex *int   `json:"newIndex,omitempty"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}

	var body connectionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Parent == "" || body.Child == "" {
		http.Error(w, "request body must carry parent and child filenames", http.StatusBadRequest)
		return
	}

	if err := manager.Connect(body.Parent, body.Child); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}

	parent := r.URL.Query().Get("parent")
	child := r.URL.Query().Get("child")
	if parent == "" || child == "" {
		http.Error(w, "parent and child query parameters are required", http.StatusBadRequest)
		return
	}

	if err := manager.Disconnect(parent, child); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}

	var body connectionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Parent == "" || body.Child == "" || body.NewIndex == nil {
		http.Error(w, "request body must carry parent, child and newIndex", http.StatusBadRequest)
		return
	}

	if err := manager.Reorder(body.Parent, body.Child, *body.NewIndex); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]api.NodeValidation{"results": manager.Validate()})
}

func (s *Server) handleExecuteCheck(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.manager(w, r)
	if !ok {
		return
	}

	if err := manager.ExecuteCheck(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmavtt/tabletop-core/internal/scene"
)

// createSceneRequest is the request body for POST /api/scenes.
type createSceneRequest struct {
	Name string `json:"name"`
}

// sceneActivatedEvent is the scene_activated broadcast payload.
type sceneActivatedEvent struct {
	SceneID int64  `json:"scene_id"`
	Name    string `json:"name"`
}

// createTokenRequest is the request body for placing a token on a layer.
type createTokenRequest struct {
	ImagePath string         `json:"image_path"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Scale     float64        `json:"scale"`
	Rotation  float64        `json:"rotation"`
	ZIndex    int            `json:"z_index"`
	Metadata  map[string]any `json:"metadata"`
}

// handleListScenes returns the scenes visible to the caller: everything
// for GMs, the active scene only for players.
func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := s.scenes.ListScenes(r.Context(), false)
	if err != nil {
		s.logger.Error("listing scenes failed", "error", err)
		writeInternalError(w, "failed to list scenes")
		return
	}
	writeJSON(w, http.StatusOK, scene.FilterList(principalFrom(r).Role, scenes))
}

// handleCreateScene creates a scene with its three default layers. GM only.
func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	var req createSceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	created, err := s.scenes.CreateScene(r.Context(), req.Name, principalFrom(r).UserID)
	if err != nil {
		if errors.Is(err, scene.ErrInvalidScene) {
			writeBadRequest(w, "scene name is required")
			return
		}
		s.logger.Error("scene create failed", "error", err)
		writeInternalError(w, "failed to create scene")
		return
	}

	detail, err := s.scenes.GetSceneDetail(r.Context(), created.ID)
	if err != nil {
		s.logger.Error("loading created scene failed", "scene_id", created.ID, "error", err)
		writeInternalError(w, "failed to load created scene")
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// handleGetScene returns a scene with its layer stack, filtered for the
// caller's role. Scenes a player may not see read as not found.
func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	detail, err := s.scenes.GetSceneDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, scene.ErrSceneNotFound) {
			writeNotFound(w, "scene not found")
			return
		}
		s.logger.Error("loading scene failed", "scene_id", id, "error", err)
		writeInternalError(w, "failed to load scene")
		return
	}

	role := principalFrom(r).Role
	if !scene.CanView(role, &detail.Scene) {
		writeNotFound(w, "scene not found")
		return
	}
	writeJSON(w, http.StatusOK, scene.FilterForRole(role, detail))
}

// handleActivateScene makes a scene the single active one and notifies
// every connected client. GM only.
func (s *Server) handleActivateScene(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	activated, err := s.scenes.Activate(r.Context(), id)
	if err != nil {
		if errors.Is(err, scene.ErrSceneNotFound) {
			writeNotFound(w, "scene not found")
			return
		}
		s.logger.Error("scene activation failed", "scene_id", id, "error", err)
		writeInternalError(w, "failed to activate scene")
		return
	}

	s.hub.Broadcast(EventSceneActivated, sceneActivatedEvent{
		SceneID: activated.ID,
		Name:    activated.Name,
	})
	writeJSON(w, http.StatusOK, activated)
}

// handleCreateToken places a token on a layer of a scene. GM only; the
// new token is broadcast to every connected client.
func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	sceneID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	layerID, ok := parseID(w, r, "layerID")
	if !ok {
		return
	}

	var req createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ImagePath == "" {
		writeBadRequest(w, "image_path is required")
		return
	}
	if req.Scale <= 0 {
		req.Scale = 1
	}

	layer, err := s.scenes.GetLayer(r.Context(), layerID)
	if err != nil {
		if errors.Is(err, scene.ErrLayerNotFound) {
			writeNotFound(w, "layer not found")
			return
		}
		s.logger.Error("loading layer failed", "layer_id", layerID, "error", err)
		writeInternalError(w, "failed to load layer")
		return
	}
	if layer.SceneID != sceneID {
		writeNotFound(w, "layer not found in scene")
		return
	}

	tok := &scene.Token{
		LayerID:   layerID,
		ImagePath: req.ImagePath,
		X:         req.X,
		Y:         req.Y,
		Scale:     req.Scale,
		Rotation:  req.Rotation,
		ZIndex:    req.ZIndex,
		Metadata:  req.Metadata,
	}
	if err := s.scenes.CreateToken(r.Context(), tok); err != nil {
		if errors.Is(err, scene.ErrLayerNotFound) {
			writeNotFound(w, "layer not found")
			return
		}
		s.logger.Error("token create failed", "layer_id", layerID, "error", err)
		writeInternalError(w, "failed to create token")
		return
	}

	s.hub.Broadcast(EventTokenCreated, tok)
	writeJSON(w, http.StatusCreated, tok)
}

// parseID reads a positive integer URL parameter, writing a 400 response
// on failure.
func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		writeBadRequest(w, "invalid "+param+" parameter")
		return 0, false
	}
	return id, true
}

// parsePositiveInt parses a positive integer query value.
func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

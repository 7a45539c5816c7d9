package scene

import "github.com/dmavtt/tabletop-core/internal/auth"

// CanView reports whether a requester with the given role may see the
// scene at all. GMs see every scene; players see only the active one.
// Callers must translate a false result into "not found", never
// "forbidden", so scene existence is not leaked.
func CanView(role auth.Role, s *Scene) bool {
	return role == auth.RoleGM || s.Active
}

// FilterForRole returns the view of a scene a requester with the given
// role is allowed to see. GMs get the detail unchanged. For players,
// layers of type player keep their contents; every other layer keeps its
// identity and metadata but comes back with empty child collections.
//
// The input is never mutated; callers on read paths invoke this on every
// request rather than caching filtered views.
func FilterForRole(role auth.Role, d *SceneDetail) *SceneDetail {
	if role == auth.RoleGM {
		return d
	}

	filtered := &SceneDetail{
		Scene:  d.Scene,
		Layers: make([]LayerDetail, len(d.Layers)),
	}
	for i, ld := range d.Layers {
		if ld.Type == LayerPlayer {
			filtered.Layers[i] = ld
			continue
		}
		filtered.Layers[i] = LayerDetail{
			Layer:        ld.Layer,
			Tokens:       []Token{},
			Drawings:     []Drawing{},
			TextElements: []TextElement{},
		}
	}
	return filtered
}

// FilterList returns the subset of scenes visible to the role: everything
// for GMs, active scenes only for players.
func FilterList(role auth.Role, scenes []Scene) []Scene {
	if role == auth.RoleGM {
		return scenes
	}
	visible := []Scene{}
	for _, s := range scenes {
		if s.Active {
			visible = append(visible, s)
		}
	}
	return visible
}

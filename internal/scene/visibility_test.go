package scene

import (
	"testing"

	"github.com/dmavtt/tabletop-core/internal/auth"
)

func sampleDetail() *SceneDetail {
	bg := int64(1)
	fg := int64(3)
	return &SceneDetail{
		Scene: Scene{ID: 1, Name: "Dungeon", Active: true, OwnerID: 1, BackgroundLayerID: &bg, ForegroundLayerID: &fg},
		Layers: []LayerDetail{
			{
				Layer:        Layer{ID: 1, SceneID: 1, Name: "Background", OrderIndex: 0, Type: LayerBackground, Visible: true},
				Tokens:       []Token{{ID: 10, LayerID: 1, ImagePath: "uploads/map.png"}},
				Drawings:     []Drawing{},
				TextElements: []TextElement{},
			},
			{
				Layer:        Layer{ID: 2, SceneID: 1, Name: "Player", OrderIndex: 1, Type: LayerPlayer, Visible: true},
				Tokens:       []Token{{ID: 11, LayerID: 2, ImagePath: "uploads/goblin.png"}},
				Drawings:     []Drawing{{ID: 20, LayerID: 2, Type: DrawingLine, Points: []Point{{X: 0, Y: 0}}, Color: "#f00"}},
				TextElements: []TextElement{},
			},
			{
				Layer:        Layer{ID: 3, SceneID: 1, Name: "Foreground", OrderIndex: 2, Type: LayerCustom, Visible: true},
				Tokens:       []Token{},
				Drawings:     []Drawing{},
				TextElements: []TextElement{{ID: 30, LayerID: 3, Text: "GM note"}},
			},
		},
	}
}

func TestCanView(t *testing.T) {
	active := &Scene{ID: 1, Active: true}
	inactive := &Scene{ID: 2, Active: false}

	if !CanView(auth.RoleGM, active) || !CanView(auth.RoleGM, inactive) {
		t.Error("GM should see every scene")
	}
	if !CanView(auth.RolePlayer, active) {
		t.Error("player should see the active scene")
	}
	if CanView(auth.RolePlayer, inactive) {
		t.Error("player should not see an inactive scene")
	}
}

func TestFilterForRole_GMUnchanged(t *testing.T) {
	d := sampleDetail()
	got := FilterForRole(auth.RoleGM, d)
	if got != d {
		t.Error("GM view should be the unfiltered detail")
	}
}

func TestFilterForRole_PlayerStripsNonPlayerLayers(t *testing.T) {
	d := sampleDetail()
	got := FilterForRole(auth.RolePlayer, d)

	if len(got.Layers) != 3 {
		t.Fatalf("layer count = %d, want all 3 layers present", len(got.Layers))
	}

	// Background layer keeps identity but loses contents.
	if got.Layers[0].Name != "Background" {
		t.Errorf("layer metadata should survive, got name %q", got.Layers[0].Name)
	}
	if len(got.Layers[0].Tokens) != 0 {
		t.Errorf("background tokens should be stripped, got %d", len(got.Layers[0].Tokens))
	}
	if got.Layers[0].Tokens == nil || got.Layers[0].Drawings == nil || got.Layers[0].TextElements == nil {
		t.Error("stripped collections must be empty, not nil")
	}

	// Player layer keeps its contents.
	if len(got.Layers[1].Tokens) != 1 || len(got.Layers[1].Drawings) != 1 {
		t.Errorf("player layer contents should survive, got %+v", got.Layers[1])
	}

	// Custom layer loses contents.
	if len(got.Layers[2].TextElements) != 0 {
		t.Errorf("custom layer texts should be stripped, got %d", len(got.Layers[2].TextElements))
	}
}

func TestFilterForRole_DoesNotMutateInput(t *testing.T) {
	d := sampleDetail()
	_ = FilterForRole(auth.RolePlayer, d)

	if len(d.Layers[0].Tokens) != 1 || len(d.Layers[2].TextElements) != 1 {
		t.Error("filtering must not mutate the source detail")
	}
}

func TestFilterList(t *testing.T) {
	scenes := []Scene{
		{ID: 1, Name: "Dungeon", Active: false},
		{ID: 2, Name: "Tavern", Active: true},
		{ID: 3, Name: "Forest", Active: false},
	}

	if got := FilterList(auth.RoleGM, scenes); len(got) != 3 {
		t.Errorf("GM list length = %d, want 3", len(got))
	}

	got := FilterList(auth.RolePlayer, scenes)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("player list = %+v, want only the active scene", got)
	}

	if got := FilterList(auth.RolePlayer, nil); got == nil || len(got) != 0 {
		t.Errorf("player list of nil input = %v, want empty non-nil slice", got)
	}
}

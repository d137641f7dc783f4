package session

import (
	"encoding/json"
	"testing"

	"token-distance-overlay/config"
	"token-distance-overlay/scene"
)

func makeEvent(t *testing.T, msgType string, payload interface{}) ClientMessage {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
	}
	return ClientMessage{Type: msgType, Payload: raw}
}

// readyCanvas builds a manager and an attached canvas with one owned source
// token, one target, and an active combat.
func readyCanvas(t *testing.T) (*Manager, *Canvas) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RefreshThrottleMs = 0
	m := NewManager(cfg, config.NewSettings(cfg))
	canvas := &Canvas{ID: "c1"}

	ready := CanvasReadyPayload{
		UserID:       "user1",
		Grid:         scene.Grid{Gridless: true, Size: 1, Distance: 1, Units: "ft"},
		CombatActive: true,
		View:         &scene.Rect{X: 0, Y: 0, Width: 10000, Height: 10000},
		Tokens: []scene.Token{
			{ID: "src", OwnerID: "user1", X: 0, Y: 0},
			{ID: "t1", X: 30, Y: 40},
		},
	}
	m.processEvent(canvas, makeEvent(t, "canvas_ready", ready))

	if canvas.renderer == nil {
		t.Fatal("canvas_ready should attach a renderer")
	}
	return m, canvas
}

func TestCanvasReadyBuildsSceneMirror(t *testing.T) {
	_, canvas := readyCanvas(t)

	if got := len(canvas.scene.Tokens()); got != 2 {
		t.Errorf("expected 2 tokens on the scene, got %d", got)
	}
	if !canvas.scene.CombatActive() {
		t.Error("combat state should come from the ready payload")
	}
	if canvas.scene.LocalUserID() != "user1" {
		t.Errorf("unexpected local user %q", canvas.scene.LocalUserID())
	}
}

func TestEventBeforeCanvasReadyIsIgnored(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewManager(cfg, config.NewSettings(cfg))
	canvas := &Canvas{ID: "c1"}

	// Must not panic.
	m.processEvent(canvas, makeEvent(t, "hover_token", HoverTokenPayload{TokenID: "t1", Hovered: true}))

	if canvas.renderer != nil {
		t.Error("no renderer should exist before canvas_ready")
	}
}

func TestHoverEventShowsLabel(t *testing.T) {
	m, canvas := readyCanvas(t)

	m.processEvent(canvas, makeEvent(t, "hover_token", HoverTokenPayload{TokenID: "t1", Hovered: true}))

	labels := canvas.renderer.VisibleLabels()
	if len(labels) != 1 {
		t.Fatalf("expected 1 label, got %d", len(labels))
	}
	if labels[0].Text != "50 ft" {
		t.Errorf("expected %q, got %q", "50 ft", labels[0].Text)
	}
	if canvas.renderer.HoveredTokenID() != "t1" {
		t.Errorf("unexpected hovered token %q", canvas.renderer.HoveredTokenID())
	}
}

func TestMoveTokenEventUpdatesMeasurement(t *testing.T) {
	m, canvas := readyCanvas(t)
	m.processEvent(canvas, makeEvent(t, "hover_token", HoverTokenPayload{TokenID: "t1", Hovered: true}))

	m.processEvent(canvas, makeEvent(t, "move_token", MoveTokenPayload{TokenID: "t1", X: 60, Y: 80}))

	labels := canvas.renderer.VisibleLabels()
	if len(labels) != 1 || labels[0].Text != "100 ft" {
		t.Errorf("expected an updated label, got %+v", labels)
	}
}

func TestMoveUnknownTokenIsIgnored(t *testing.T) {
	m, canvas := readyCanvas(t)

	// Must not panic or create a token.
	m.processEvent(canvas, makeEvent(t, "move_token", MoveTokenPayload{TokenID: "ghost", X: 1, Y: 2}))

	if _, ok := canvas.scene.Token("ghost"); ok {
		t.Error("moving an unknown token must not create one")
	}
}

func TestPreviewLifecycleEvents(t *testing.T) {
	m, canvas := readyCanvas(t)
	m.processEvent(canvas, makeEvent(t, "hover_token", HoverTokenPayload{TokenID: "t1", Hovered: true}))

	// Dragging the source spawns a preview that drives the measurement.
	m.processEvent(canvas, makeEvent(t, "preview_token", MoveTokenPayload{TokenID: "src", X: 30, Y: 0}))

	labels := canvas.renderer.VisibleLabels()
	if len(labels) != 1 || labels[0].Text != "40 ft" {
		t.Errorf("expected the preview-driven label, got %+v", labels)
	}
	if _, ok := canvas.scene.Token(scene.PreviewID("src")); !ok {
		t.Fatal("preview instance should exist")
	}

	// Dropping it snaps back to the live position.
	m.processEvent(canvas, makeEvent(t, "destroy_preview", DeleteTokenPayload{TokenID: "src"}))
	m.processEvent(canvas, makeEvent(t, "move_token", MoveTokenPayload{TokenID: "t1", X: 30, Y: 40}))

	labels = canvas.renderer.VisibleLabels()
	if len(labels) != 1 || labels[0].Text != "50 ft" {
		t.Errorf("expected the live-driven label, got %+v", labels)
	}
	if _, ok := canvas.scene.Token(scene.PreviewID("src")); ok {
		t.Error("preview instance should be gone")
	}
}

func TestDeleteTokenEventRemovesLabel(t *testing.T) {
	m, canvas := readyCanvas(t)
	m.processEvent(canvas, makeEvent(t, "hover_token", HoverTokenPayload{TokenID: "t1", Hovered: true}))

	m.processEvent(canvas, makeEvent(t, "delete_token", DeleteTokenPayload{TokenID: "t1"}))

	if len(canvas.renderer.VisibleLabels()) != 0 {
		t.Error("deleted token should lose its label")
	}
	if _, ok := canvas.scene.Token("t1"); ok {
		t.Error("token should be gone from the scene")
	}
}

func TestCombatEventsGateLabels(t *testing.T) {
	m, canvas := readyCanvas(t)
	m.processEvent(canvas, makeEvent(t, "hover_token", HoverTokenPayload{TokenID: "t1", Hovered: true}))

	m.processEvent(canvas, makeEvent(t, "combat", CombatPayload{Active: false}))
	if len(canvas.renderer.VisibleLabels()) != 0 {
		t.Error("combat end should hide labels")
	}

	m.processEvent(canvas, makeEvent(t, "combat", CombatPayload{Active: true}))
	if len(canvas.renderer.VisibleLabels()) != 1 {
		t.Error("combat restart should reveal the same labels")
	}
}

func TestTargetEventRespectsUser(t *testing.T) {
	m, canvas := readyCanvas(t)

	m.processEvent(canvas, makeEvent(t, "target_token", TargetTokenPayload{UserID: "user2", TokenID: "t1", Targeted: true}))
	if len(canvas.renderer.VisibleLabels()) != 0 {
		t.Error("another user's target must not label the token")
	}

	m.processEvent(canvas, makeEvent(t, "target_token", TargetTokenPayload{UserID: "user1", TokenID: "t1", Targeted: true}))
	if len(canvas.renderer.VisibleLabels()) != 1 {
		t.Error("the local user's target should label the token")
	}
	if !canvas.scene.IsTargeted("t1") {
		t.Error("the scene mirror should record the local target mark")
	}
}

func TestHighlightAllEvent(t *testing.T) {
	m, canvas := readyCanvas(t)
	m.processEvent(canvas, makeEvent(t, "add_token", AddTokenPayload{Token: scene.Token{ID: "t2", X: 0, Y: 10}}))

	m.processEvent(canvas, makeEvent(t, "highlight_all", HighlightAllPayload{Active: true}))
	if got := len(canvas.renderer.VisibleLabels()); got != 2 {
		t.Errorf("expected labels on both non-source tokens, got %d", got)
	}

	m.processEvent(canvas, makeEvent(t, "highlight_all", HighlightAllPayload{Active: false}))
	if got := len(canvas.renderer.VisibleLabels()); got != 0 {
		t.Errorf("expected no labels after disengaging, got %d", got)
	}
}

func TestPanEventUpdatesViewport(t *testing.T) {
	m, canvas := readyCanvas(t)
	m.processEvent(canvas, makeEvent(t, "hover_token", HoverTokenPayload{TokenID: "t1", Hovered: true}))

	m.processEvent(canvas, makeEvent(t, "pan", PanPayload{View: scene.Rect{X: 5000, Y: 5000, Width: 100, Height: 100}}))

	if len(canvas.renderer.VisibleLabels()) != 0 {
		t.Error("panning the target out of view should hide its label")
	}
}

func TestUnknownEventTypeIsIgnored(t *testing.T) {
	m, canvas := readyCanvas(t)

	// Must not panic.
	m.processEvent(canvas, makeEvent(t, "teleport_token", map[string]string{"tokenId": "t1"}))
}

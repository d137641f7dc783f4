package session

import (
	"encoding/json"
	"log"

	"token-distance-overlay/hooks"
	"token-distance-overlay/overlay"
	"token-distance-overlay/scene"
)

// Wire payloads for inbound host events.

type CanvasReadyPayload struct {
	UserID       string        `json:"userId"`
	Grid         scene.Grid    `json:"grid"`
	Modules      []string      `json:"modules"`
	CombatActive bool          `json:"combatActive"`
	View         *scene.Rect   `json:"view"`
	Tokens       []scene.Token `json:"tokens"`
}

type AddTokenPayload struct {
	Token scene.Token `json:"token"`
}

type MoveTokenPayload struct {
	TokenID   string  `json:"tokenId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Elevation float64 `json:"elevation"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

type DeleteTokenPayload struct {
	TokenID string `json:"tokenId"`
}

type HoverTokenPayload struct {
	TokenID string `json:"tokenId"`
	Hovered bool   `json:"hovered"`
}

type ControlTokenPayload struct {
	TokenID    string `json:"tokenId"`
	Controlled bool   `json:"controlled"`
}

type TargetTokenPayload struct {
	UserID   string `json:"userId"`
	TokenID  string `json:"tokenId"`
	Targeted bool   `json:"targeted"`
}

type HighlightAllPayload struct {
	Active bool `json:"active"`
}

type CombatPayload struct {
	Active bool `json:"active"`
}

type PanPayload struct {
	View scene.Rect `json:"view"`
}

// processEvent applies one host event to the canvas mirror, then dispatches
// the matching hook so the renderer reacts. Called with the manager lock
// held; events for a canvas are therefore strictly sequential.
func (m *Manager) processEvent(canvas *Canvas, msg ClientMessage) {
	if msg.Type == "canvas_ready" {
		var p CanvasReadyPayload
		if err := unmarshal(msg, &p); err != nil {
			return
		}
		m.attachCanvas(canvas, p)
		return
	}
	if canvas.scene == nil {
		log.Println("event before canvas_ready:", msg.Type)
		return
	}

	switch msg.Type {
	case "add_token":
		var p AddTokenPayload
		if err := unmarshal(msg, &p); err == nil {
			token := p.Token
			canvas.scene.AddToken(&token)
		}
	case "move_token":
		var p MoveTokenPayload
		if err := unmarshal(msg, &p); err == nil {
			m.moveToken(canvas, p, false)
		}
	case "preview_token":
		var p MoveTokenPayload
		if err := unmarshal(msg, &p); err == nil {
			m.moveToken(canvas, p, true)
		}
	case "destroy_preview":
		var p DeleteTokenPayload
		if err := unmarshal(msg, &p); err == nil {
			previewID := scene.PreviewID(p.TokenID)
			canvas.scene.DestroyPreview(p.TokenID)
			canvas.bus.Call(hooks.EventDestroyPreview, hooks.DestroyPreviewPayload{TokenID: previewID})
		}
	case "delete_token":
		var p DeleteTokenPayload
		if err := unmarshal(msg, &p); err == nil {
			canvas.scene.RemoveToken(p.TokenID)
			canvas.bus.Call(hooks.EventDeleteToken, hooks.DeleteTokenPayload{TokenID: p.TokenID})
		}
	case "hover_token":
		var p HoverTokenPayload
		if err := unmarshal(msg, &p); err == nil {
			canvas.bus.Call(hooks.EventHoverToken, hooks.HoverTokenPayload{TokenID: p.TokenID, Hovered: p.Hovered})
		}
	case "control_token":
		var p ControlTokenPayload
		if err := unmarshal(msg, &p); err == nil {
			if token, ok := canvas.scene.Token(scene.BaseID(p.TokenID)); ok {
				token.Controlled = p.Controlled
			}
			canvas.bus.Call(hooks.EventControlToken, hooks.ControlTokenPayload{TokenID: p.TokenID, Controlled: p.Controlled})
		}
	case "target_token":
		var p TargetTokenPayload
		if err := unmarshal(msg, &p); err == nil {
			if p.UserID == canvas.scene.LocalUserID() {
				canvas.scene.SetTargeted(p.TokenID, p.Targeted)
			}
			canvas.bus.Call(hooks.EventTargetToken, hooks.TargetTokenPayload{UserID: p.UserID, TokenID: p.TokenID, Targeted: p.Targeted})
		}
	case "highlight_all":
		var p HighlightAllPayload
		if err := unmarshal(msg, &p); err == nil {
			canvas.bus.Call(hooks.EventHighlightObjects, hooks.HighlightObjectsPayload{Active: p.Active})
		}
	case "combat":
		var p CombatPayload
		if err := unmarshal(msg, &p); err == nil {
			m.updateCombat(canvas, p.Active)
		}
	case "pan":
		var p PanPayload
		if err := unmarshal(msg, &p); err == nil {
			canvas.scene.SetView(p.View)
			canvas.bus.Call(hooks.EventCanvasPan, hooks.CanvasPanPayload{View: p.View})
		}
	default:
		log.Println("unknown message type:", msg.Type)
	}
}

// attachCanvas builds the scene mirror from the ready payload and attaches
// the renderer for this canvas lifetime.
func (m *Manager) attachCanvas(canvas *Canvas, p CanvasReadyPayload) {
	grid := p.Grid
	sc := scene.NewCanvas(p.UserID, &grid)
	for _, mod := range p.Modules {
		sc.DeclareModule(mod)
	}
	sc.SetCombatActive(p.CombatActive)
	if p.View != nil {
		sc.SetView(*p.View)
	}
	for i := range p.Tokens {
		token := p.Tokens[i]
		sc.AddToken(&token)
	}

	canvas.scene = sc
	canvas.bus = hooks.NewBus()
	canvas.renderer = overlay.Attach(sc, canvas.bus, m.settings, m.opts)
}

// moveToken applies a live move or a drag-preview move, then fires the
// refresh event for the instance that changed.
func (m *Manager) moveToken(canvas *Canvas, p MoveTokenPayload, preview bool) {
	id := scene.BaseID(p.TokenID)
	var token *scene.Token
	if preview {
		existing, ok := canvas.scene.Token(scene.PreviewID(id))
		if !ok {
			existing, ok = canvas.scene.SpawnPreview(id)
			if !ok {
				return
			}
		}
		token = existing
	} else {
		existing, ok := canvas.scene.Token(id)
		if !ok {
			return
		}
		token = existing
	}

	token.X = p.X
	token.Y = p.Y
	token.Elevation = p.Elevation
	if p.Width > 0 {
		token.Width = p.Width
	}
	if p.Height > 0 {
		token.Height = p.Height
	}
	canvas.bus.Call(hooks.EventRefreshToken, hooks.RefreshTokenPayload{TokenID: token.ID})
}

// updateCombat maps a combat state change to the create/update/delete hooks
// the renderer listens on.
func (m *Manager) updateCombat(canvas *Canvas, active bool) {
	was := canvas.scene.CombatActive()
	canvas.scene.SetCombatActive(active)
	payload := hooks.CombatPayload{Active: active}
	switch {
	case active && !was:
		canvas.bus.Call(hooks.EventCombatCreate, payload)
	case !active && was:
		canvas.bus.Call(hooks.EventCombatDelete, payload)
	default:
		canvas.bus.Call(hooks.EventCombatUpdate, payload)
	}
}

func unmarshal(msg ClientMessage, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		log.Printf("invalid %s payload: %v", msg.Type, err)
		return err
	}
	return nil
}

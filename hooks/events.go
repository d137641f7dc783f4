package hooks

import "token-distance-overlay/scene"

// Host event names and their payload types.

const (
	// EventHoverToken fires when the pointer enters or leaves a token.
	// Payload: HoverTokenPayload
	EventHoverToken = "hoverToken"

	// EventControlToken fires when a token is selected or released.
	// Payload: ControlTokenPayload
	EventControlToken = "controlToken"

	// EventRefreshToken fires after a token's position, elevation, or size
	// changed. Fired for live and preview instances alike.
	// Payload: RefreshTokenPayload
	EventRefreshToken = "refreshToken"

	// EventDeleteToken fires after a live token was removed from the scene.
	// Payload: DeleteTokenPayload
	EventDeleteToken = "deleteToken"

	// EventDestroyPreview fires after a drag-preview instance was destroyed.
	// Payload: DestroyPreviewPayload
	EventDestroyPreview = "destroyPreview"

	// EventTargetToken fires when any user toggles a target mark.
	// Payload: TargetTokenPayload
	EventTargetToken = "targetToken"

	// EventHighlightObjects fires when the highlight-all modifier is pressed
	// or released. Payload: HighlightObjectsPayload
	EventHighlightObjects = "highlightObjects"

	// EventCanvasPan fires after the camera moved or zoomed.
	// Payload: CanvasPanPayload
	EventCanvasPan = "canvasPan"

	// EventCombatCreate, EventCombatUpdate and EventCombatDelete fire when
	// the combat encounter changes. Payload: CombatPayload
	EventCombatCreate = "combatCreate"
	EventCombatUpdate = "combatUpdate"
	EventCombatDelete = "combatDelete"
)

type HoverTokenPayload struct {
	TokenID string
	Hovered bool
}

type ControlTokenPayload struct {
	TokenID    string
	Controlled bool
}

type RefreshTokenPayload struct {
	TokenID string
}

type DeleteTokenPayload struct {
	TokenID string
}

type DestroyPreviewPayload struct {
	TokenID string
}

type TargetTokenPayload struct {
	UserID   string
	TokenID  string
	Targeted bool
}

type HighlightObjectsPayload struct {
	Active bool
}

type CanvasPanPayload struct {
	View scene.Rect
}

type CombatPayload struct {
	Active bool
}

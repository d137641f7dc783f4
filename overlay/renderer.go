package overlay

import (
	"fmt"

	"token-distance-overlay/config"
	"token-distance-overlay/hooks"
	"token-distance-overlay/measure"
	"token-distance-overlay/scene"
)

// containerName identifies the overlay's visual container on the canvas.
const containerName = "distance-labels"

// Options tunes a Renderer at attach time.
type Options struct {
	// ConflictingModules lists host module ids that render their own
	// distance labels. If any is active the renderer disables itself
	// wholesale instead of risking double rendering.
	ConflictingModules []string

	// LabelOffset optionally lifts labels above third-party UI; see
	// Registry.SetLabelOffset.
	LabelOffset func(tokenID string) float64
}

// Renderer drives the overlay for one canvas lifetime. It subscribes to the
// host's events on attach, maps each one to trigger mutations on the label
// registry, and releases every subscription on Close. Exactly one instance
// exists per active canvas.
type Renderer struct {
	canvas   *scene.Canvas
	bus      *hooks.Bus
	settings *config.Settings

	cache     *measure.Cache
	registry  *Registry
	container *scene.Container
	subs      []hooks.Subscription

	sourceID  string // base identity of the tracked source token, "" if none
	hoveredID string // base identity of the hovered target, "" if none
	showAll   bool

	refreshAll *throttle
	disabled   bool

	// ownsTooltipFilter records whether the install succeeded; teardown must
	// not remove a filter some other module installed first.
	ownsTooltipFilter bool
}

// Attach constructs the renderer for a ready canvas: fresh registry and
// measurement cache, overlay container on the stage, tooltip-suppression
// shim, and one subscription per host event.
func Attach(canvas *scene.Canvas, bus *hooks.Bus, settings *config.Settings, opts Options) *Renderer {
	r := &Renderer{
		canvas:   canvas,
		bus:      bus,
		settings: settings,
		cache:    measure.NewCache(),
	}

	for _, id := range opts.ConflictingModules {
		if canvas.ModuleActive(id) {
			canvas.Notifier().Warn(fmt.Sprintf("module %q renders its own distance labels, distance overlay disabled for this canvas", id))
			r.disabled = true
			return r
		}
	}

	r.container = canvas.AddContainer(containerName)
	r.registry = NewRegistry(canvas, r.cache, r.container, r.gate, r.sourceToken)
	if opts.LabelOffset != nil {
		r.registry.SetLabelOffset(opts.LabelOffset)
	}

	if err := canvas.InstallTooltipFilter(r.ShouldSuppressTooltip); err != nil {
		canvas.Notifier().Warn(fmt.Sprintf("could not take over the elevation tooltip, native tooltips will show through labels: %v", err))
	} else {
		r.ownsTooltipFilter = true
	}

	r.refreshAll = newThrottle(settings.RefreshThrottle, r.registry.RefreshAllActiveLabels)
	r.resolveSource()

	sub := func(event string, fn hooks.Handler) {
		r.subs = append(r.subs, bus.On(event, fn))
	}
	sub(hooks.EventHoverToken, r.onHoverToken)
	sub(hooks.EventControlToken, r.onControlToken)
	// Source tracking must settle before any per-label refresh reads it, so
	// this handler registers ahead of the target handler for the same event.
	sub(hooks.EventRefreshToken, r.onRefreshTokenSource)
	sub(hooks.EventRefreshToken, r.onRefreshTokenTarget)
	sub(hooks.EventDeleteToken, r.onDeleteToken)
	sub(hooks.EventDestroyPreview, r.onDestroyPreview)
	sub(hooks.EventTargetToken, r.onTargetToken)
	sub(hooks.EventHighlightObjects, r.onHighlightObjects)
	sub(hooks.EventCanvasPan, r.onCanvasPan)
	sub(hooks.EventCombatCreate, r.onCombatChanged)
	sub(hooks.EventCombatUpdate, r.onCombatChanged)
	sub(hooks.EventCombatDelete, r.onCombatChanged)

	return r
}

// Close releases every subscription and detaches the overlay container.
// Called at canvas tear-down; the renderer must not be used afterwards.
func (r *Renderer) Close() {
	if r.disabled {
		return
	}
	r.bus.OffAll(r.subs)
	r.subs = nil
	if r.ownsTooltipFilter {
		r.canvas.RemoveTooltipFilter()
	}
	r.canvas.RemoveContainer(r.container)
}

// Disabled reports whether the renderer stood down due to a conflicting
// module.
func (r *Renderer) Disabled() bool { return r.disabled }

// HoveredTokenID returns the base identity of the currently hovered token,
// or "" if none. Exposed for third-party interoperability.
func (r *Renderer) HoveredTokenID() string { return r.hoveredID }

// ShouldSuppressTooltip reports whether the host's native tooltip for the
// token should be replaced with empty text because a distance label is
// currently shown on it.
func (r *Renderer) ShouldSuppressTooltip(tokenID string) bool {
	if r.disabled {
		return false
	}
	return r.registry.IsLabelVisible(scene.BaseID(tokenID))
}

// Registry exposes the label registry for host-side queries.
func (r *Renderer) Registry() *Registry { return r.registry }

// VisibleLabels returns the labels currently shown on the canvas.
func (r *Renderer) VisibleLabels() []LabelState {
	if r.disabled {
		return nil
	}
	return r.registry.VisibleLabels()
}

// ApplySettings re-evaluates every active label after a settings change.
// The throttle window is read live and needs no rebinding.
func (r *Renderer) ApplySettings() {
	if r.disabled {
		return
	}
	r.registry.RefreshAllActiveLabels()
}

// gate is the combat-gating predicate: rendering is allowed while a combat
// encounter is active, or always when the user opted into hover outside
// combat. Evaluated fresh on every visibility decision.
func (r *Renderer) gate() bool {
	return r.canvas.CombatActive() || r.settings.HoverOutsideCombat()
}

// resolveSource picks the measurement origin: the single controlled token if
// exactly one is selected, else the user's single owned token on the scene,
// else none.
func (r *Renderer) resolveSource() {
	if controlled := r.canvas.ControlledTokens(); len(controlled) == 1 {
		r.sourceID = controlled[0].BaseID()
		return
	}
	if owned := r.canvas.OwnedTokens(r.canvas.LocalUserID()); len(owned) == 1 {
		r.sourceID = owned[0].BaseID()
		return
	}
	r.sourceID = ""
}

// sourceToken materializes the tracked source. While the source is mid-drag
// its preview instance is substituted so measurements track the dragged
// position; cache keys normalize back to the base identity either way.
func (r *Renderer) sourceToken() *scene.Token {
	if r.sourceID == "" {
		return nil
	}
	if preview, ok := r.canvas.Token(scene.PreviewID(r.sourceID)); ok {
		return preview
	}
	if live, ok := r.canvas.Token(r.sourceID); ok {
		return live
	}
	return nil
}

func (r *Renderer) onHoverToken(payload any) {
	p, ok := payload.(hooks.HoverTokenPayload)
	if !ok {
		return
	}
	token, found := r.canvas.Token(scene.BaseID(p.TokenID))
	if p.Hovered {
		r.resolveSource()
		if !found {
			return
		}
		r.hoveredID = token.BaseID()
		r.registry.SetTrigger(token, TriggerHover, true, true)
		return
	}
	if r.hoveredID == scene.BaseID(p.TokenID) {
		r.hoveredID = ""
	}
	if found {
		r.registry.SetTrigger(token, TriggerHover, false, true)
	}
}

func (r *Renderer) onControlToken(payload any) {
	if _, ok := payload.(hooks.ControlTokenPayload); !ok {
		return
	}
	// Control changes move the source and flip gating outcomes without
	// touching the hover or target triggers.
	r.resolveSource()
	if r.showAll {
		r.applyHighlightAll()
		return
	}
	r.registry.RefreshAllActiveLabels()
}

// applyHighlightAll marks every live token except the current source. Run
// when the highlight engages and again whenever the source moves to another
// token while it is held, so the old source regains a label and the new one
// loses its own.
func (r *Renderer) applyHighlightAll() {
	for _, token := range r.canvas.Tokens() {
		if token.BaseID() == r.sourceID {
			// Clearing must refresh: a record left with no triggers is
			// skipped by the bulk pass and would keep a stale label.
			r.registry.SetTrigger(token, TriggerHighlightAll, false, true)
			continue
		}
		r.registry.SetTrigger(token, TriggerHighlightAll, true, false)
	}
	r.registry.RefreshAllActiveLabels()
}

func (r *Renderer) onRefreshTokenSource(payload any) {
	p, ok := payload.(hooks.RefreshTokenPayload)
	if !ok {
		return
	}
	if r.sourceID == "" || scene.BaseID(p.TokenID) != r.sourceID {
		return
	}
	r.refreshAll.call()
}

func (r *Renderer) onRefreshTokenTarget(payload any) {
	p, ok := payload.(hooks.RefreshTokenPayload)
	if !ok {
		return
	}
	base := scene.BaseID(p.TokenID)
	if !r.registry.Triggers(base).Any() {
		return
	}
	// Single-label refreshes are cheap; no throttling here.
	if token, found := r.canvas.Token(base); found {
		r.registry.RefreshLabel(token)
	}
}

func (r *Renderer) onDeleteToken(payload any) {
	p, ok := payload.(hooks.DeleteTokenPayload)
	if !ok {
		return
	}
	base := scene.BaseID(p.TokenID)
	r.cache.InvalidateToken(base)
	r.registry.DeleteLabel(base)
	if r.hoveredID == base {
		r.hoveredID = ""
	}
	if r.sourceID == base {
		r.resolveSource()
		r.registry.RefreshAllActiveLabels()
	}
}

func (r *Renderer) onDestroyPreview(payload any) {
	p, ok := payload.(hooks.DestroyPreviewPayload)
	if !ok {
		return
	}
	r.cache.InvalidateToken(p.TokenID)
}

func (r *Renderer) onTargetToken(payload any) {
	p, ok := payload.(hooks.TargetTokenPayload)
	if !ok {
		return
	}
	// Target marks from other users never drive local labels.
	if p.UserID != r.canvas.LocalUserID() {
		return
	}
	token, found := r.canvas.Token(scene.BaseID(p.TokenID))
	if !found {
		return
	}
	r.registry.SetTrigger(token, TriggerTargeted, p.Targeted, true)
}

func (r *Renderer) onHighlightObjects(payload any) {
	p, ok := payload.(hooks.HighlightObjectsPayload)
	if !ok {
		return
	}
	if !p.Active {
		r.showAll = false
		r.registry.ClearTriggerFromAll(TriggerHighlightAll)
		return
	}
	r.showAll = true
	r.resolveSource()
	r.applyHighlightAll()
}

func (r *Renderer) onCanvasPan(payload any) {
	if _, ok := payload.(hooks.CanvasPanPayload); !ok {
		return
	}
	r.refreshAll.call()
}

func (r *Renderer) onCombatChanged(payload any) {
	if _, ok := payload.(hooks.CombatPayload); !ok {
		return
	}
	// Gating only: triggers survive so labels reappear without re-hovering.
	r.registry.RefreshAllActiveLabels()
}

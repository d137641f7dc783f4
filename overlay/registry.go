package overlay

import (
	"sort"

	"token-distance-overlay/measure"
	"token-distance-overlay/scene"
)

type labelRecord struct {
	label    *Label
	triggers Triggers
}

// LabelState is the externally visible description of one shown label.
type LabelState struct {
	TokenID string  `json:"tokenId"`
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Registry owns one label per token that has ever been activated, keyed by
// base identity. It combines the token's triggers with the gating predicate,
// self-exclusion and the viewport check to decide visibility, and pulls
// measurements through the cache when a label is shown.
type Registry struct {
	canvas    *scene.Canvas
	cache     *measure.Cache
	container *scene.Container

	// gate reports whether rendering is currently allowed at all; source
	// resolves the measurement origin (preview-substituted while dragging).
	// Both are re-evaluated on every visibility decision, never cached.
	gate   func() bool
	source func() *scene.Token

	// labelOffset optionally lifts a label to avoid third-party UI stacked
	// above the token. Keyed by base identity, returns extra pixels upward.
	labelOffset func(tokenID string) float64

	records map[string]*labelRecord
}

func NewRegistry(canvas *scene.Canvas, cache *measure.Cache, container *scene.Container, gate func() bool, source func() *scene.Token) *Registry {
	return &Registry{
		canvas:    canvas,
		cache:     cache,
		container: container,
		gate:      gate,
		source:    source,
		records:   make(map[string]*labelRecord),
	}
}

// SetLabelOffset installs the optional vertical-offset callback.
func (r *Registry) SetLabelOffset(fn func(tokenID string) float64) {
	r.labelOffset = fn
}

// SetTrigger sets or clears one trigger on the token's record, creating the
// record lazily on first activation. Preview instances never own records.
// When refresh is true the token's visibility is recomputed immediately.
func (r *Registry) SetTrigger(token *scene.Token, tr Trigger, active bool, refresh bool) {
	if token == nil || token.IsPreview() {
		return
	}
	rec, ok := r.records[token.BaseID()]
	if !ok {
		if !active {
			return
		}
		rec = &labelRecord{label: newLabel(r.container)}
		r.records[token.BaseID()] = rec
	}
	rec.triggers.Set(tr, active)
	if refresh {
		r.RefreshLabel(token)
	}
}

// ClearTriggerFromAll clears one trigger across every tracked record,
// refreshing each record that had it set. Other triggers are untouched.
func (r *Registry) ClearTriggerFromAll(tr Trigger) {
	for _, id := range r.recordIDs() {
		rec := r.records[id]
		if !rec.triggers.Has(tr) {
			continue
		}
		rec.triggers.Set(tr, false)
		r.refreshByID(id)
	}
}

// RefreshLabel recomputes one token's label visibility, text and position.
func (r *Registry) RefreshLabel(token *scene.Token) {
	if token == nil {
		return
	}
	id := token.BaseID()
	rec, ok := r.records[id]
	if !ok {
		return
	}

	src := r.source()
	if !rec.triggers.Any() || !r.gate() || src == nil {
		r.hideLabel(id, rec)
		return
	}
	if src.BaseID() == id || !r.canvas.InView(token.Center()) {
		r.hideLabel(id, rec)
		return
	}

	m := r.cache.Measurement(r.canvas.Grid(), src, token)

	pos := labelAnchor(r.canvas.Grid(), token)
	if r.labelOffset != nil {
		pos.Y -= r.labelOffset(id)
	}
	wasVisible := rec.label.Visible()
	rec.label.update(m.Text, pos)
	rec.label.show()
	if !wasVisible {
		r.canvas.RequestTooltipRefresh(id)
	}
}

// RefreshAllActiveLabels re-evaluates every record with at least one trigger
// set. Records the live placeable list no longer resolves are hidden.
func (r *Registry) RefreshAllActiveLabels() {
	for _, id := range r.recordIDs() {
		if r.records[id].triggers.Any() {
			r.refreshByID(id)
		}
	}
}

// DeleteLabel destroys the label's visual unit and drops the record.
func (r *Registry) DeleteLabel(tokenID string) {
	id := scene.BaseID(tokenID)
	rec, ok := r.records[id]
	if !ok {
		return
	}
	rec.label.destroy()
	delete(r.records, id)
}

// Triggers returns the token's current trigger set.
func (r *Registry) Triggers(tokenID string) Triggers {
	if rec, ok := r.records[scene.BaseID(tokenID)]; ok {
		return rec.triggers
	}
	return Triggers{}
}

func (r *Registry) HasTrigger(tokenID string, tr Trigger) bool {
	return r.Triggers(tokenID).Has(tr)
}

// IsLabelVisible reports whether the token's label is currently shown.
func (r *Registry) IsLabelVisible(tokenID string) bool {
	if rec, ok := r.records[scene.BaseID(tokenID)]; ok {
		return rec.label.Visible()
	}
	return false
}

// VisibleLabels returns the shown labels ordered by token id.
func (r *Registry) VisibleLabels() []LabelState {
	var out []LabelState
	for _, id := range r.recordIDs() {
		rec := r.records[id]
		if !rec.label.Visible() {
			continue
		}
		pos := rec.label.Position()
		out = append(out, LabelState{TokenID: id, Text: rec.label.Text(), X: pos.X, Y: pos.Y})
	}
	return out
}

// refreshByID resolves the live token for a record before refreshing. A
// record whose token is gone from the placeable list is hidden, not deleted;
// explicit deletion events own record removal.
func (r *Registry) refreshByID(id string) {
	token, ok := r.canvas.Token(id)
	if !ok {
		if rec, exists := r.records[id]; exists {
			r.hideLabel(id, rec)
		}
		return
	}
	r.RefreshLabel(token)
}

// hideLabel hides the label and, if it was showing, asks the host to
// re-render the native tooltip it had been suppressing.
func (r *Registry) hideLabel(id string, rec *labelRecord) {
	if !rec.label.Visible() {
		return
	}
	rec.label.hide()
	r.canvas.RequestTooltipRefresh(id)
}

func (r *Registry) recordIDs() []string {
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// labelAnchor is the target token's top-center point in scene pixels.
func labelAnchor(grid *scene.Grid, token *scene.Token) scene.Point {
	h := float64(token.Height)
	if h < 1 {
		h = 1
	}
	return scene.Point{X: token.X, Y: token.Y - h*grid.Size/2}
}

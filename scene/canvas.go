package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Rect is an axis-aligned rectangle in scene pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ErrTooltipFilterInstalled is returned when a second tooltip filter is
// installed on the same canvas.
var ErrTooltipFilterInstalled = errors.New("a tooltip filter is already installed")

// Canvas is the host-side view of one scene: placeable tokens (live and
// drag-preview instances), the grid, the viewport, combat state, target
// marks for the local user, and the visual containers drawn on top of it.
type Canvas struct {
	localUserID string
	grid        *Grid
	modules     []string

	tokens  map[string]*Token
	targets map[string]bool

	combatActive bool
	view         Rect

	containers []*Container
	notifier   *Notifier

	tooltipFilter    func(tokenID string) bool
	tooltipRefreshes map[string]int
}

func NewCanvas(localUserID string, grid *Grid) *Canvas {
	return &Canvas{
		localUserID:      localUserID,
		grid:             grid,
		tokens:           make(map[string]*Token),
		targets:          make(map[string]bool),
		view:             Rect{X: 0, Y: 0, Width: 4096, Height: 4096},
		notifier:         NewNotifier(),
		tooltipRefreshes: make(map[string]int),
	}
}

func (c *Canvas) LocalUserID() string { return c.localUserID }
func (c *Canvas) Grid() *Grid         { return c.grid }
func (c *Canvas) Notifier() *Notifier { return c.notifier }

// DeclareModule registers a third-party module as active on the host.
func (c *Canvas) DeclareModule(id string) {
	c.modules = append(c.modules, id)
}

func (c *Canvas) ModuleActive(id string) bool {
	for _, m := range c.modules {
		if m == id {
			return true
		}
	}
	return false
}

// AddToken places a token (live or preview) on the canvas.
func (c *Canvas) AddToken(t *Token) {
	if t.Width < 1 {
		t.Width = 1
	}
	if t.Height < 1 {
		t.Height = 1
	}
	c.tokens[t.ID] = t
}

// RemoveToken deletes a token by its exact identifier. Removing a live token
// also removes its preview instance and any target mark.
func (c *Canvas) RemoveToken(id string) {
	delete(c.tokens, id)
	if !IsPreviewID(id) {
		delete(c.tokens, PreviewID(id))
		delete(c.targets, id)
	}
}

// Token resolves a token by its exact identifier.
func (c *Canvas) Token(id string) (*Token, bool) {
	t, ok := c.tokens[id]
	return t, ok
}

// Tokens returns the live (non-preview) tokens, ordered by identifier.
func (c *Canvas) Tokens() []*Token {
	out := make([]*Token, 0, len(c.tokens))
	for _, t := range c.tokens {
		if !t.IsPreview() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ControlledTokens returns the live tokens currently controlled (selected).
func (c *Canvas) ControlledTokens() []*Token {
	var out []*Token
	for _, t := range c.Tokens() {
		if t.Controlled {
			out = append(out, t)
		}
	}
	return out
}

// OwnedTokens returns the live tokens owned by the given user.
func (c *Canvas) OwnedTokens(userID string) []*Token {
	var out []*Token
	for _, t := range c.Tokens() {
		if t.OwnerID == userID {
			out = append(out, t)
		}
	}
	return out
}

// SpawnPreview clones the live token into a drag-preview instance and
// returns it. The preview starts at the live token's position.
func (c *Canvas) SpawnPreview(baseID string) (*Token, bool) {
	live, ok := c.tokens[BaseID(baseID)]
	if !ok {
		return nil, false
	}
	preview := *live
	preview.ID = PreviewID(live.ID)
	preview.Controlled = false
	c.tokens[preview.ID] = &preview
	return &preview, true
}

// DestroyPreview removes the preview instance for the given base identity.
func (c *Canvas) DestroyPreview(baseID string) {
	delete(c.tokens, PreviewID(baseID))
}

// SetTargeted marks or unmarks a local-user target on a live token.
func (c *Canvas) SetTargeted(tokenID string, targeted bool) {
	if targeted {
		c.targets[BaseID(tokenID)] = true
	} else {
		delete(c.targets, BaseID(tokenID))
	}
}

func (c *Canvas) IsTargeted(tokenID string) bool {
	return c.targets[BaseID(tokenID)]
}

func (c *Canvas) SetCombatActive(active bool) { c.combatActive = active }
func (c *Canvas) CombatActive() bool          { return c.combatActive }

// SetView updates the viewport rectangle after a pan or zoom.
func (c *Canvas) SetView(view Rect) { c.view = view }
func (c *Canvas) View() Rect        { return c.view }

// InView reports whether a point lies within the current viewport.
func (c *Canvas) InView(p Point) bool {
	return c.view.Contains(p)
}

// AddContainer creates a named visual container on top of the canvas.
func (c *Canvas) AddContainer(name string) *Container {
	container := &Container{Name: name}
	c.containers = append(c.containers, container)
	return container
}

// RemoveContainer detaches a container and everything in it.
func (c *Canvas) RemoveContainer(container *Container) {
	for i, existing := range c.containers {
		if existing == container {
			c.containers = append(c.containers[:i], c.containers[i+1:]...)
			return
		}
	}
}

// InstallTooltipFilter installs the predicate consulted by TooltipText. Only
// one filter may be installed at a time.
func (c *Canvas) InstallTooltipFilter(filter func(tokenID string) bool) error {
	if c.tooltipFilter != nil {
		return ErrTooltipFilterInstalled
	}
	c.tooltipFilter = filter
	return nil
}

// RemoveTooltipFilter uninstalls the tooltip filter, if any.
func (c *Canvas) RemoveTooltipFilter() {
	c.tooltipFilter = nil
}

// TooltipText renders the host's native elevation tooltip for a token. The
// text is empty when the token has no elevation or when the installed filter
// suppresses it.
func (c *Canvas) TooltipText(tokenID string) string {
	t, ok := c.tokens[tokenID]
	if !ok {
		return ""
	}
	if c.tooltipFilter != nil && c.tooltipFilter(tokenID) {
		return ""
	}
	if t.Elevation == 0 {
		return ""
	}
	sign := "+"
	if t.Elevation < 0 {
		sign = "-"
	}
	return strings.TrimSpace(fmt.Sprintf("%s%v %s", sign, abs(t.Elevation), c.grid.Units))
}

// RequestTooltipRefresh asks the host to re-render a token's native tooltip.
func (c *Canvas) RequestTooltipRefresh(tokenID string) {
	c.tooltipRefreshes[BaseID(tokenID)]++
}

// TooltipRefreshCount returns how many refreshes were requested for a token.
func (c *Canvas) TooltipRefreshCount(tokenID string) int {
	return c.tooltipRefreshes[BaseID(tokenID)]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

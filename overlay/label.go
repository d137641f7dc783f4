package overlay

import "token-distance-overlay/scene"

// labelIcon is the glyph drawn left of the distance text.
const labelIcon = "↔"

// iconAdvance is the horizontal space reserved for the icon, in pixels.
const iconAdvance = 14

// Label is the two-part visual unit for one target token: an icon node and a
// text node inside the overlay container. Pure presentation; the registry
// makes every decision about it.
type Label struct {
	container *scene.Container
	icon      *scene.Node
	text      *scene.Node
	visible   bool
}

func newLabel(container *scene.Container) *Label {
	l := &Label{
		container: container,
		icon:      container.AddNode(),
		text:      container.AddNode(),
	}
	l.icon.Text = labelIcon
	return l
}

// update positions the label at pos and sets its text. pos is the anchor
// point; the icon sits left of the text.
func (l *Label) update(text string, pos scene.Point) {
	l.icon.X = pos.X - iconAdvance
	l.icon.Y = pos.Y
	l.text.X = pos.X
	l.text.Y = pos.Y
	l.text.Text = text
}

func (l *Label) show() {
	l.visible = true
	l.icon.Visible = true
	l.text.Visible = true
}

func (l *Label) hide() {
	l.visible = false
	l.icon.Visible = false
	l.text.Visible = false
}

func (l *Label) destroy() {
	l.hide()
	l.container.RemoveNode(l.icon)
	l.container.RemoveNode(l.text)
}

func (l *Label) Visible() bool {
	return l.visible
}

// Text returns the currently displayed distance text.
func (l *Label) Text() string {
	return l.text.Text
}

// Position returns the label's anchor point.
func (l *Label) Position() scene.Point {
	return scene.Point{X: l.text.X, Y: l.text.Y}
}

package scene

import "log"

// Node is a positionable text primitive inside a container.
type Node struct {
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible bool    `json:"visible"`
}

// Container is a named group of nodes drawn on top of the canvas.
type Container struct {
	Name  string
	nodes []*Node
}

// AddNode creates a new hidden node inside the container.
func (c *Container) AddNode() *Node {
	n := &Node{}
	c.nodes = append(c.nodes, n)
	return n
}

// RemoveNode detaches a node from the container.
func (c *Container) RemoveNode(n *Node) {
	for i, existing := range c.nodes {
		if existing == n {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			return
		}
	}
}

// Nodes returns the container's nodes in creation order.
func (c *Container) Nodes() []*Node {
	return c.nodes
}

// Notifier surfaces user-facing warnings. Each distinct message is shown at
// most once per canvas lifetime.
type Notifier struct {
	seen     map[string]bool
	warnings []string
}

func NewNotifier() *Notifier {
	return &Notifier{seen: make(map[string]bool)}
}

// Warn shows a warning notification unless the same message was already shown.
func (n *Notifier) Warn(msg string) {
	if n.seen[msg] {
		return
	}
	n.seen[msg] = true
	n.warnings = append(n.warnings, msg)
	log.Printf("warning: %s", msg)
}

// Warnings returns the messages shown so far.
func (n *Notifier) Warnings() []string {
	return n.warnings
}

package session

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"token-distance-overlay/config"
	"token-distance-overlay/hooks"
	"token-distance-overlay/overlay"
	"token-distance-overlay/scene"
	"token-distance-overlay/store"
)

type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Canvas is one live canvas session: the mirrored scene, its hook bus, and
// the renderer attached for this canvas lifetime. The websocket connection
// delivering host events defines that lifetime.
type Canvas struct {
	ID       string
	scene    *scene.Canvas
	bus      *hooks.Bus
	renderer *overlay.Renderer
}

// Manager owns the canvas sessions and the shared user settings. Its mutex
// serializes all event processing, so each renderer sees one event complete
// before the next begins.
type Manager struct {
	mu          sync.Mutex
	canvases    map[string]*Canvas
	maxCanvases int
	settings    *config.Settings
	opts        overlay.Options
	store       *store.Store
}

func NewManager(cfg config.Config, settings *config.Settings) *Manager {
	return &Manager{
		canvases:    make(map[string]*Canvas),
		maxCanvases: cfg.MaxCanvases,
		settings:    settings,
		opts:        overlay.Options{ConflictingModules: cfg.ConflictingModules},
	}
}

// SetLabelOffset installs a vertical-offset callback applied to every canvas
// attached afterwards.
func (m *Manager) SetLabelOffset(fn func(tokenID string) float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts.LabelOffset = fn
}

// SetStore enables settings persistence.
func (m *Manager) SetStore(s *store.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
}

// RestoreSettings loads persisted settings, if any.
func (m *Manager) RestoreSettings() {
	m.mu.Lock()
	s := m.store
	m.mu.Unlock()
	if s == nil {
		return
	}
	data, err := s.LoadSettings()
	if err != nil {
		log.Printf("warning: failed to load persisted settings: %v", err)
		return
	}
	if data == nil {
		return
	}
	if err := json.Unmarshal(data, m.settings); err != nil {
		log.Printf("warning: invalid persisted settings: %v", err)
	}
}

// Reset drops all canvas sessions.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.canvases {
		if c.renderer != nil {
			c.renderer.Close()
		}
	}
	m.canvases = make(map[string]*Canvas)
}

// CreateCanvas reserves a canvas session id. The canvas itself comes to life
// when a client connects and sends canvas_ready.
func (m *Manager) CreateCanvas(c *fiber.Ctx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.canvases) >= m.maxCanvases {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "maximum number of canvases reached",
		})
	}

	id := uuid.NewString()
	m.canvases[id] = &Canvas{ID: id}

	log.Println("canvas session created:", id)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"canvasId": id,
	})
}

// GetHovered returns the hovered token id on a canvas, for third-party
// interoperability.
func (m *Manager) GetHovered(c *fiber.Ctx) error {
	id := c.Params("id")
	m.mu.Lock()
	defer m.mu.Unlock()

	canvas, ok := m.canvases[id]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "canvas not found",
		})
	}
	hovered := ""
	if canvas.renderer != nil {
		hovered = canvas.renderer.HoveredTokenID()
	}
	return c.JSON(fiber.Map{
		"tokenId": hovered,
	})
}

// UpdateSettings applies both user settings at runtime, persists them when a
// store is configured, and re-evaluates every canvas so the change is
// visible immediately.
func (m *Manager) UpdateSettings(c *fiber.Ctx) error {
	var body struct {
		HoverOutsideCombat *bool `json:"hoverOutsideCombat"`
		RefreshThrottleMs  *int  `json:"refreshThrottleMs"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid settings payload",
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if body.HoverOutsideCombat != nil {
		m.settings.SetHoverOutsideCombat(*body.HoverOutsideCombat)
	}
	if body.RefreshThrottleMs != nil {
		m.settings.SetRefreshThrottleMs(*body.RefreshThrottleMs)
	}
	for _, canvas := range m.canvases {
		if canvas.renderer != nil {
			canvas.renderer.ApplySettings()
		}
	}

	if m.store != nil {
		data, err := json.Marshal(m.settings)
		if err == nil {
			err = m.store.SaveSettings(data)
		}
		if err != nil {
			log.Printf("warning: failed to persist settings: %v", err)
		}
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleWS runs one canvas lifetime: the first message must be canvas_ready,
// which constructs the scene mirror and attaches the renderer; every later
// message is translated into host events; the connection closing tears the
// canvas down.
func (m *Manager) HandleWS(c *websocket.Conn) {
	canvasID := c.Params("canvasId")
	m.mu.Lock()
	canvas, ok := m.canvases[canvasID]
	m.mu.Unlock()
	if !ok {
		c.Close()
		return
	}

	defer func() {
		c.Close()
		m.mu.Lock()
		if canvas.renderer != nil {
			canvas.renderer.Close()
		}
		delete(m.canvases, canvasID)
		m.mu.Unlock()
		log.Println("canvas session closed:", canvasID)
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(msg, &clientMsg); err != nil {
			log.Println("invalid message:", err)
			continue
		}

		m.mu.Lock()
		m.processEvent(canvas, clientMsg)
		reply := labelsSnapshot(canvas)
		m.mu.Unlock()

		if reply != nil {
			sendMessage(c, reply)
		}
	}
}

// labelsSnapshot copies the currently visible labels into a push message.
// Must be called with the manager lock held: it reads renderer state that the
// settings endpoint and session teardown mutate under the same lock. The
// returned message holds only copies and is safe to marshal after unlocking.
func labelsSnapshot(canvas *Canvas) *ServerMessage {
	if canvas.renderer == nil {
		return nil
	}
	labels := canvas.renderer.VisibleLabels()
	if labels == nil {
		labels = []overlay.LabelState{}
	}
	return &ServerMessage{
		Type: "labels",
		Payload: fiber.Map{
			"labels":         labels,
			"hoveredTokenId": canvas.renderer.HoveredTokenID(),
		},
	}
}

func sendMessage(c *websocket.Conn, msg *ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("failed to marshal message:", err)
		return
	}
	c.WriteMessage(websocket.TextMessage, data)
}

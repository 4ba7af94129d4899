package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"greenbuilder/internal/models"
	"greenbuilder/internal/repository"
)

const (
	feedWriteWait = 10 * time.Second
	feedPongWait  = 60 * time.Second
	feedPingEvery = (feedPongWait * 9) / 10
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Происхождение проверяет CORS middleware на HTTP уровне
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedConfig selects how sidebar updates are produced.
type FeedConfig struct {
	// Live streams repository snapshots as they change. When false the feed
	// falls back to periodic polling.
	Live bool
	// PollPeriod is the polling interval used when Live is false.
	PollPeriod time.Duration
}

// feedClient is one WebSocket subscriber of the sidebar feed.
type feedClient struct {
	userID string
	conn   *websocket.Conn
	send   chan []models.DesignSummary // буфер 1, последний снапшот вытесняет предыдущий
}

// FeedManager fans repository snapshots out to connected WebSocket clients.
// Every message is the complete newest-first sidebar list; clients replace,
// never merge.
type FeedManager struct {
	repo    repository.DesignRepository
	cfg     FeedConfig
	logger  *zap.Logger
	refresh chan struct{}

	mu      sync.RWMutex
	clients map[int]*feedClient
	nextID  int
	latest  []models.DesignSummary
}

// NewFeedManager создает новый FeedManager.
func NewFeedManager(repo repository.DesignRepository, cfg FeedConfig, logger *zap.Logger) *FeedManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollPeriod <= 0 {
		cfg.PollPeriod = 15 * time.Second
	}
	return &FeedManager{
		repo:    repo,
		cfg:     cfg,
		logger:  logger.Named("FeedManager"),
		refresh: make(chan struct{}, 1),
		clients: make(map[int]*feedClient),
	}
}

// Run drives the feed until ctx is cancelled. Live mode consumes the
// repository subscription; poll mode reloads the list on a ticker and on
// Refresh nudges.
func (m *FeedManager) Run(ctx context.Context) {
	if m.cfg.Live {
		m.runLive(ctx)
		return
	}
	m.runPolling(ctx)
}

func (m *FeedManager) runLive(ctx context.Context) {
	updates, err := m.repo.Subscribe(ctx)
	if err != nil {
		m.logger.Error("Subscription failed, falling back to polling", zap.Error(err))
		m.runPolling(ctx)
		return
	}
	m.logger.Info("Sidebar feed running in live mode")
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case snapshot, ok := <-updates:
			if !ok {
				m.closeAll()
				return
			}
			m.publish(snapshot)
		}
	}
}

func (m *FeedManager) runPolling(ctx context.Context) {
	m.logger.Info("Sidebar feed running in polling mode", zap.Duration("period", m.cfg.PollPeriod))
	ticker := time.NewTicker(m.cfg.PollPeriod)
	defer ticker.Stop()

	m.reload(ctx)
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.reload(ctx)
		case <-m.refresh:
			m.reload(ctx)
		}
	}
}

// Refresh nudges a polling feed to reload immediately. Пустая операция в
// live режиме: там снапшоты приходят сами.
func (m *FeedManager) Refresh() {
	if m == nil {
		return
	}
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

func (m *FeedManager) reload(ctx context.Context) {
	summaries, err := m.repo.List(ctx)
	if err != nil {
		m.logger.Warn("Sidebar reload failed", zap.Error(err))
		return
	}
	m.publish(summaries)
}

// publish replaces the cached snapshot and offers it to every client,
// evicting an undelivered older snapshot first.
func (m *FeedManager) publish(snapshot []models.DesignSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = snapshot
	for _, client := range m.clients {
		select {
		case client.send <- snapshot:
		default:
			select {
			case <-client.send:
			default:
			}
			client.send <- snapshot
		}
	}
}

// attach registers a client and seeds it with the latest snapshot.
func (m *FeedManager) attach(client *feedClient) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.clients[id] = client
	if m.latest != nil {
		client.send <- m.latest
	}
	return id
}

func (m *FeedManager) detach(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if client, ok := m.clients[id]; ok {
		delete(m.clients, id)
		close(client.send)
	}
}

func (m *FeedManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, client := range m.clients {
		delete(m.clients, id)
		close(client.send)
		_ = client.conn.Close()
	}
}

// designsFeed upgrades the connection and streams sidebar snapshots. Токен
// сессии приходит query-параметром: браузерный WebSocket не умеет заголовки.
func (h *DesignHandler) designsFeed(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, APIError{Message: "missing session token"})
		return
	}
	user, err := h.sessions.CurrentUser(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, APIError{Message: "invalid session token"})
		return
	}

	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &feedClient{
		userID: user.UID,
		conn:   conn,
		send:   make(chan []models.DesignSummary, 1),
	}
	id := h.feed.attach(client)
	h.logger.Info("Sidebar feed client connected", zap.String("uid", user.UID))

	go h.feed.writePump(client)
	h.feed.readPump(client, id)
}

// readPump discards inbound frames and unregisters the client when the
// connection drops.
func (m *FeedManager) readPump(client *feedClient, id int) {
	defer func() {
		m.detach(id)
		_ = client.conn.Close()
		m.logger.Info("Sidebar feed client disconnected", zap.String("uid", client.userID))
	}()

	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("Sidebar feed read error",
					zap.String("uid", client.userID), zap.Error(err))
			}
			return
		}
	}
}

// writePump sends snapshots and keepalive pings until the send channel closes.
func (m *FeedManager) writePump(client *feedClient) {
	ticker := time.NewTicker(feedPingEvery)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case snapshot, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(gin.H{"designs": snapshot}); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

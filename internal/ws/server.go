package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"restaurant-admin-service/internal/auth"
	"restaurant-admin-service/internal/config"
	"restaurant-admin-service/internal/utils"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config

	shiftRealtime *shiftRealtime
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	srv := &Server{DB: db, Logger: logger, Config: cfg}
	srv.shiftRealtime = newShiftRealtime(db, logger, cfg.WSShiftPollInterval)
	return srv
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

// shiftRealtime pushes the open-shift state of a branch to subscribed
// admin dashboards. A Postgres LISTEN on shift_updates carries the
// branch id; a refresh ticker covers missed notifications.
type shiftRealtime struct {
	db              *pgxpool.Pool
	logger          *zap.Logger
	refreshInterval time.Duration

	started sync.Once
	mu      sync.RWMutex
	subs    map[string]map[*wsClient]struct{}
}

func newShiftRealtime(db *pgxpool.Pool, logger *zap.Logger, refreshInterval time.Duration) *shiftRealtime {
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Second
	}
	return &shiftRealtime{
		db:              db,
		logger:          logger,
		refreshInterval: refreshInterval,
		subs:            make(map[string]map[*wsClient]struct{}),
	}
}

func (sr *shiftRealtime) ensureStarted() {
	sr.started.Do(func() {
		go sr.listenLoop(context.Background())
		go sr.refreshLoop(context.Background())
	})
}

func (sr *shiftRealtime) subscribe(branchID string, client *wsClient) (unsubscribe func()) {
	key := strings.TrimSpace(branchID)
	if key == "" {
		return func() {}
	}

	sr.mu.Lock()
	if sr.subs[key] == nil {
		sr.subs[key] = make(map[*wsClient]struct{})
	}
	sr.subs[key][client] = struct{}{}
	sr.mu.Unlock()

	return func() {
		sr.mu.Lock()
		clients := sr.subs[key]
		delete(clients, client)
		if len(clients) == 0 {
			delete(sr.subs, key)
		}
		sr.mu.Unlock()
	}
}

func (sr *shiftRealtime) broadcast(branchID string, message any) {
	key := strings.TrimSpace(branchID)
	if key == "" {
		return
	}

	sr.mu.RLock()
	clientsMap := sr.subs[key]
	clients := make([]*wsClient, 0, len(clientsMap))
	for c := range clientsMap {
		clients = append(clients, c)
	}
	sr.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			sr.mu.Lock()
			if current := sr.subs[key]; current != nil {
				delete(current, c)
				if len(current) == 0 {
					delete(sr.subs, key)
				}
			}
			sr.mu.Unlock()
		}
	}
}

func (sr *shiftRealtime) subscribedBranchIDs() []string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	ids := make([]string, 0, len(sr.subs))
	for key := range sr.subs {
		ids = append(ids, key)
	}
	return ids
}

// fetchShiftState returns the open shift and its running totals, or a
// nil shift when the branch has no open shift.
func (sr *shiftRealtime) fetchShiftState(ctx context.Context, branchID int64) (map[string]any, error) {
	query := `
		select s.id, s.name, s.started_at,
			(select count(*) from orders o where o.shift_id = s.id) as order_count,
			(select coalesce(sum(o.total), 0) from orders o where o.shift_id = s.id) as order_total
		from order_shifts s
		where s.branch_id = $1 and s.status = 'OPEN'
	`

	var id int64
	var name string
	var startedAt time.Time
	var orderCount int64
	var orderTotal pgtype.Numeric
	err := sr.db.QueryRow(ctx, query, branchID).Scan(&id, &name, &startedAt, &orderCount, &orderTotal)
	if err != nil {
		return map[string]any{"shift": nil}, nil
	}

	total := utils.NumericToFloat64(orderTotal)

	return map[string]any{
		"shift": map[string]any{
			"id":         id,
			"name":       name,
			"status":     "OPEN",
			"startedAt":  startedAt,
			"orderCount": orderCount,
			"orderTotal": total,
		},
	}, nil
}

func (sr *shiftRealtime) pushState(ctx context.Context, branchIDText string) {
	branchID, err := parseInt64(branchIDText)
	if err != nil {
		sr.broadcast(branchIDText, map[string]any{"type": "shift.refresh"})
		return
	}
	state, err := sr.fetchShiftState(ctx, branchID)
	if err != nil {
		sr.broadcast(branchIDText, map[string]any{"type": "shift.refresh"})
		return
	}
	sr.broadcast(branchIDText, map[string]any{"type": "shift.state", "data": state})
}

func (sr *shiftRealtime) listenLoop(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := sr.db.Acquire(ctx)
		if err != nil {
			if sr.logger != nil {
				sr.logger.Warn("shift LISTEN acquire failed", zap.Error(err))
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*2, 30*time.Second)
			continue
		}

		_, err = conn.Exec(ctx, `listen shift_updates`)
		if err != nil {
			conn.Release()
			if sr.logger != nil {
				sr.logger.Warn("shift LISTEN failed", zap.Error(err))
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*2, 30*time.Second)
			continue
		}

		backoff = time.Second
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				break
			}
			branchIDText := strings.TrimSpace(n.Payload)
			if branchIDText == "" {
				continue
			}
			sr.pushState(ctx, branchIDText)
		}

		conn.Release()
		time.Sleep(backoff)
		backoff = minDuration(backoff*2, 30*time.Second)
	}
}

// refreshLoop re-pushes state on an interval so order counts keep
// moving even without shift lifecycle notifications.
func (sr *shiftRealtime) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(sr.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, branchIDText := range sr.subscribedBranchIDs() {
				sr.pushState(ctx, branchIDText)
			}
		}
	}
}

// AdminShiftsWS streams open-shift state for one branch. The client
// authenticates with ?token= since browsers cannot set headers on
// websocket upgrades.
func (s *Server) AdminShiftsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if parsed := auth.ParseBearerToken(token); parsed != "" {
		token = parsed
	}
	claims, err := auth.VerifyAccessToken(token, s.Config.JWTSecret)
	if err != nil {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}
	if claims.Role != auth.RoleAdmin && claims.Role != auth.RoleBranchManager {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	branchIDText := strings.TrimSpace(r.URL.Query().Get("branchId"))
	branchID, err := parseInt64(branchIDText)
	if err != nil {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "invalid request"})
		return
	}

	s.shiftRealtime.ensureStarted()
	ctx := r.Context()
	client := &wsClient{conn: conn}
	unsubscribe := s.shiftRealtime.subscribe(branchIDText, client)
	defer unsubscribe()

	// Send the initial snapshot immediately
	if state, stateErr := s.shiftRealtime.fetchShiftState(ctx, branchID); stateErr == nil {
		_ = client.writeJSON(map[string]any{"type": "shift.state", "data": state})
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	select {
	case <-clientClosed:
		return
	case <-ctx.Done():
		return
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func parseInt64(value string) (int64, error) {
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

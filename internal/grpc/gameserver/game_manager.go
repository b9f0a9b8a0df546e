package gameserver

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/events"
	"github.com/mitchelldurbincs/santorini/internal/game/events/subscribers"
)

var (
	ErrAtCapacity = errors.New("server at capacity")
	ErrGameExists = errors.New("game id already in use")
)

type gameInstance struct {
	id      string
	match   *game.Match
	players []playerInfo
	mu      sync.RWMutex // guards match, players and lastActivity

	eventBus *events.EventBus
	handlers []string // SubscribeFunc ids of the broadcast handlers

	// Activity tracking for cleanup
	createdAt    time.Time
	lastActivity time.Time

	idempotencyManager *IdempotencyManager
	streamManager      *StreamManager
}

type playerInfo struct {
	seat  int
	name  string
	token string
}

// GameManager owns every hosted game
type GameManager struct {
	mu       sync.RWMutex
	games    map[string]*gameInstance
	cfg      Config
	logger   zerolog.Logger
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewGameManager creates a manager and starts its cleanup loop when
// cfg.CleanupInterval is positive
func NewGameManager(cfg Config, logger zerolog.Logger) *GameManager {
	gm := &GameManager{
		games:  make(map[string]*gameInstance),
		cfg:    cfg,
		logger: logger.With().Str("component", "GameManager").Logger(),
		stop:   make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		gm.wg.Add(1)
		go gm.runCleanup()
	}
	return gm
}

// CreateGame registers a new game. An empty id is replaced by a random one.
func (gm *GameManager) CreateGame(gameID string) (*gameInstance, error) {
	if gameID == "" {
		gameID = uuid.NewString()
	}

	eventBus := events.NewEventBusWithLogger(gm.logger)
	eventLogger := subscribers.NewLoggerSubscriber("logger-"+gameID, gm.logger, zerolog.DebugLevel)
	eventLogger.SetEventFilter([]string{events.TypeGameEnded, events.TypeStateTransition, events.TypeMoveRejected})
	eventBus.Subscribe(eventLogger)

	now := time.Now()
	g := &gameInstance{
		id:                 gameID,
		players:            make([]playerInfo, 0, 2),
		eventBus:           eventBus,
		createdAt:          now,
		lastActivity:       now,
		idempotencyManager: NewIdempotencyManager(gm.cfg.IdempotencyTTL),
		streamManager:      NewStreamManager(gameID, gm.logger),
	}

	// Handlers run on the goroutine that mutates the match, which holds g.mu
	for _, eventType := range []string{events.TypePlayerJoined, events.TypeWorkerPlaced, events.TypeMoveApplied, events.TypeGameEnded} {
		id := eventBus.SubscribeFunc(eventType, func(event events.Event) {
			g.streamManager.Broadcast(event.Type(), g.match.Snapshot())
		})
		g.handlers = append(g.handlers, id)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if gm.cfg.MaxGames > 0 && len(gm.games) >= gm.cfg.MaxGames {
		gm.logger.Warn().
			Int("current_games", len(gm.games)).
			Int("max_games", gm.cfg.MaxGames).
			Msg("Rejecting game creation - server at capacity")
		return nil, fmt.Errorf("%w: %d/%d games active", ErrAtCapacity, len(gm.games), gm.cfg.MaxGames)
	}
	if _, exists := gm.games[gameID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}

	g.match = game.NewMatch(game.MatchConfig{GameID: gameID, Logger: gm.logger, EventBus: eventBus})
	gm.games[gameID] = g

	gm.logger.Info().
		Str("game_id", gameID).
		Int("current_games", len(gm.games)).
		Int("max_games", gm.cfg.MaxGames).
		Msg("Created game")
	return g, nil
}

// GetGame retrieves a game by ID
func (gm *GameManager) GetGame(gameID string) (*gameInstance, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	g, exists := gm.games[gameID]
	return g, exists
}

// ActiveGames returns the number of hosted games
func (gm *GameManager) ActiveGames() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// Watchers returns the number of open watch streams across all games
func (gm *GameManager) Watchers() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	n := 0
	for _, g := range gm.games {
		n += g.streamManager.ClientCount()
	}
	return n
}

// List returns a summary of every hosted game
func (gm *GameManager) List() []GameInfo {
	gm.mu.RLock()
	refs := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		refs = append(refs, g)
	}
	gm.mu.RUnlock()

	infos := make([]GameInfo, 0, len(refs))
	for _, g := range refs {
		g.mu.RLock()
		infos = append(infos, g.infoLocked())
		g.mu.RUnlock()
	}
	return infos
}

// Stop ends the cleanup loop and closes every watcher stream
func (gm *GameManager) Stop() {
	gm.stopOnce.Do(func() {
		close(gm.stop)
		gm.wg.Wait()

		gm.mu.RLock()
		defer gm.mu.RUnlock()
		for _, g := range gm.games {
			g.streamManager.CloseAll()
		}
	})
}

func (gm *GameManager) runCleanup() {
	defer gm.wg.Done()
	ticker := time.NewTicker(gm.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			gm.cleanupGames(now)
		case <-gm.stop:
			return
		}
	}
}

// cleanupGames removes games finished longer than FinishedGameTTL ago and
// games idle longer than AbandonedGameTTL. It returns the removed ids.
func (gm *GameManager) cleanupGames(now time.Time) []string {
	// Phase 1: collect references without holding game locks
	gm.mu.RLock()
	refs := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		refs = append(refs, g)
	}
	gm.mu.RUnlock()

	// Phase 2: check each game on its own lock
	var toDelete []*gameInstance
	for _, g := range refs {
		g.mu.RLock()
		idle := now.Sub(g.lastActivity)
		finished := g.match.GameIsOver()
		g.mu.RUnlock()

		reason := ""
		switch {
		case finished && gm.cfg.FinishedGameTTL > 0 && idle > gm.cfg.FinishedGameTTL:
			reason = "finished game TTL expired"
		case !finished && gm.cfg.AbandonedGameTTL > 0 && idle > gm.cfg.AbandonedGameTTL:
			reason = "game abandoned (no activity)"
		default:
			continue
		}
		toDelete = append(toDelete, g)
		gm.logger.Info().
			Str("game_id", g.id).
			Str("reason", reason).
			Dur("inactive", idle).
			Msg("Cleaning up game")
	}
	if len(toDelete) == 0 {
		return nil
	}

	// Phase 3: close streams, then drop the games under one lock
	ids := make([]string, 0, len(toDelete))
	for _, g := range toDelete {
		g.detach()
		ids = append(ids, g.id)
	}
	gm.mu.Lock()
	for _, id := range ids {
		delete(gm.games, id)
	}
	remaining := len(gm.games)
	gm.mu.Unlock()

	gm.logger.Info().
		Int("cleaned", len(ids)).
		Int("remaining", remaining).
		Msg("Game cleanup completed")
	return ids
}

// detach stops broadcasting match events and closes every watcher stream
func (g *gameInstance) detach() {
	for _, id := range g.handlers {
		g.eventBus.UnsubscribeFunc(id)
	}
	g.eventBus.Unsubscribe("logger-" + g.id)
	g.streamManager.CloseAll()
}

// joinLocked registers name and returns its seat and token. A name already in
// the game gets its existing seat and token back. Must be called with mu held.
func (g *gameInstance) joinLocked(name string) (playerInfo, error) {
	for _, p := range g.players {
		if strings.EqualFold(p.name, name) {
			return p, nil
		}
	}
	if err := g.match.AddPlayer(name); err != nil {
		return playerInfo{}, err
	}
	p := playerInfo{seat: len(g.players) + 1, name: name, token: uuid.NewString()}
	g.players = append(g.players, p)
	return p, nil
}

// playerByTokenLocked returns the player holding token. Must be called with mu held.
func (g *gameInstance) playerByTokenLocked(token string) (playerInfo, bool) {
	if token == "" {
		return playerInfo{}, false
	}
	for _, p := range g.players {
		if p.token == token {
			return p, true
		}
	}
	return playerInfo{}, false
}

func (g *gameInstance) touchLocked() {
	g.lastActivity = time.Now()
}

func (g *gameInstance) infoLocked() GameInfo {
	info := GameInfo{
		GameID:       g.id,
		Phase:        g.match.Phase().String(),
		Players:      make([]string, 0, len(g.players)),
		Turn:         g.match.Turn(),
		Watchers:     g.streamManager.ClientCount(),
		CreatedAt:    timestamppb.New(g.createdAt),
		LastActivity: timestamppb.New(g.lastActivity),
	}
	for _, p := range g.players {
		info.Players = append(info.Players, p.name)
	}
	if w := g.match.Winner(); w != nil {
		info.Winner = w.Name()
	}
	return info
}

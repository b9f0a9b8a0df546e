package gameserver

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mitchelldurbincs/santorini/internal/game"
)

// watcherBufferSize is the number of updates queued per watcher before
// new ones are dropped
const watcherBufferSize = 16

// streamClient is one WatchGame stream
type streamClient struct {
	id         uint64
	ctx        context.Context
	cancelFunc context.CancelFunc
	updateChan chan *GameUpdate
}

// StreamManager fans game updates out to every watcher of a game
type StreamManager struct {
	gameID    string
	clients   map[uint64]*streamClient
	nextID    uint64
	clientsMu sync.RWMutex
	logger    zerolog.Logger
}

func NewStreamManager(gameID string, logger zerolog.Logger) *StreamManager {
	return &StreamManager{
		gameID:  gameID,
		clients: make(map[uint64]*streamClient),
		logger:  logger.With().Str("component", "StreamManager").Str("game_id", gameID).Logger(),
	}
}

// RegisterClient adds a watcher whose lifetime is bound to ctx
func (sm *StreamManager) RegisterClient(ctx context.Context) *streamClient {
	sm.clientsMu.Lock()
	defer sm.clientsMu.Unlock()

	sm.nextID++
	cctx, cancel := context.WithCancel(ctx)
	client := &streamClient{
		id:         sm.nextID,
		ctx:        cctx,
		cancelFunc: cancel,
		updateChan: make(chan *GameUpdate, watcherBufferSize),
	}
	sm.clients[client.id] = client

	sm.logger.Debug().
		Uint64("watcher_id", client.id).
		Int("total_streams", len(sm.clients)).
		Msg("Stream client registered")
	return client
}

// UnregisterClient removes a watcher and closes its channel
func (sm *StreamManager) UnregisterClient(id uint64) {
	sm.clientsMu.Lock()
	defer sm.clientsMu.Unlock()

	if client, exists := sm.clients[id]; exists {
		client.cancelFunc()
		close(client.updateChan)
		delete(sm.clients, id)

		sm.logger.Debug().
			Uint64("watcher_id", id).
			Int("remaining_streams", len(sm.clients)).
			Msg("Stream client unregistered")
	}
}

// Broadcast queues an update for every watcher without blocking. Watchers
// whose buffer is full miss the update.
func (sm *StreamManager) Broadcast(event string, state game.Snapshot) {
	sm.clientsMu.RLock()
	defer sm.clientsMu.RUnlock()
	if len(sm.clients) == 0 {
		return
	}

	update := &GameUpdate{
		GameID:    sm.gameID,
		Event:     event,
		State:     state,
		Timestamp: timestamppb.Now(),
	}
	for id, client := range sm.clients {
		select {
		case client.updateChan <- update:
		default:
			sm.logger.Warn().
				Uint64("watcher_id", id).
				Str("event", event).
				Msg("Stream update channel full, dropping update")
		}
	}
}

func (sm *StreamManager) ClientCount() int {
	sm.clientsMu.RLock()
	defer sm.clientsMu.RUnlock()
	return len(sm.clients)
}

// CloseAll ends every watcher's stream
func (sm *StreamManager) CloseAll() {
	sm.clientsMu.Lock()
	defer sm.clientsMu.Unlock()

	for id, client := range sm.clients {
		client.cancelFunc()
		close(client.updateChan)
		delete(sm.clients, id)
	}
}

package gameserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/search"
)

// MaxSuggestDepth bounds the depth a client may ask SuggestMove for
const MaxSuggestDepth = 6

// Config tunes the game service
type Config struct {
	MaxGames          int
	FinishedGameTTL   time.Duration
	AbandonedGameTTL  time.Duration
	CleanupInterval   time.Duration
	IdempotencyTTL    time.Duration
	SuggestDepth      int
	SearchParallelism int
}

// DefaultConfig mirrors the defaults of the server's configuration file
func DefaultConfig() Config {
	return Config{
		MaxGames:          100,
		FinishedGameTTL:   5 * time.Minute,
		AbandonedGameTTL:  30 * time.Minute,
		CleanupInterval:   time.Minute,
		IdempotencyTTL:    DefaultIdempotencyTTL,
		SuggestDepth:      3,
		SearchParallelism: 4,
	}
}

// Server implements GameServiceServer
type Server struct {
	gameManager *GameManager
	cfg         Config
	logger      zerolog.Logger
}

var _ GameServiceServer = (*Server)(nil)

func NewServer(cfg Config, logger zerolog.Logger) *Server {
	if cfg.SuggestDepth <= 0 {
		cfg.SuggestDepth = search.DefaultDepth
	}
	if cfg.SuggestDepth > MaxSuggestDepth {
		logger.Warn().
			Int("suggest_depth", cfg.SuggestDepth).
			Int("max", MaxSuggestDepth).
			Msg("Configured suggest depth above the maximum, clamping")
		cfg.SuggestDepth = MaxSuggestDepth
	}
	if cfg.SearchParallelism <= 0 {
		cfg.SearchParallelism = 1
	}
	return &Server{
		gameManager: NewGameManager(cfg, logger),
		cfg:         cfg,
		logger:      logger.With().Str("component", "GameServer").Logger(),
	}
}

// Close stops background cleanup and ends every WatchGame stream
func (s *Server) Close() {
	s.gameManager.Stop()
}

// ActiveGames returns the number of hosted games
func (s *Server) ActiveGames() int {
	return s.gameManager.ActiveGames()
}

// Watchers returns the number of open WatchGame streams
func (s *Server) Watchers() int {
	return s.gameManager.Watchers()
}

func (s *Server) CreateGame(ctx context.Context, req *CreateGameRequest) (*CreateGameResponse, error) {
	g, err := s.gameManager.CreateGame(req.GameID)
	switch {
	case errors.Is(err, ErrAtCapacity):
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, ErrGameExists):
		return nil, status.Error(codes.AlreadyExists, err.Error())
	case err != nil:
		return nil, status.Errorf(codes.Internal, "failed to create game: %v", err)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	return &CreateGameResponse{Game: g.infoLocked()}, nil
}

// JoinGame seats a player. Joining again with a known name returns the
// existing seat and token.
func (s *Server) JoinGame(ctx context.Context, req *JoinGameRequest) (*JoinGameResponse, error) {
	g, err := s.lookup(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.joinLocked(req.PlayerName)
	if err != nil {
		return nil, statusFromError(err)
	}
	g.touchLocked()

	s.logger.Info().
		Str("game_id", g.id).
		Str("player", p.name).
		Int("seat", p.seat).
		Msg("Player joined game")
	return &JoinGameResponse{PlayerToken: p.token, Seat: p.seat, State: g.match.Snapshot()}, nil
}

func (s *Server) PlaceWorkers(ctx context.Context, req *PlaceWorkersRequest) (*PlaceWorkersResponse, error) {
	g, err := s.lookup(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.playerByTokenLocked(req.PlayerToken)
	if !ok {
		return nil, status.Errorf(codes.PermissionDenied, "invalid player token for game %s", g.id)
	}
	if err := g.match.PlaceWorkers(p.name, req.Placement); err != nil {
		return nil, statusFromError(err)
	}
	g.touchLocked()
	return &PlaceWorkersResponse{State: g.match.Snapshot()}, nil
}

// SubmitMove applies one turn for the token's player. Responses are cached
// per token and idempotency key, so a retried request is answered with the
// original outcome and never applied twice.
func (s *Server) SubmitMove(ctx context.Context, req *SubmitMoveRequest) (*SubmitMoveResponse, error) {
	g, err := s.lookup(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.playerByTokenLocked(req.PlayerToken)
	if !ok {
		return nil, status.Errorf(codes.PermissionDenied, "invalid player token for game %s", g.id)
	}
	if cached := g.idempotencyManager.Check(req.PlayerToken, req.IdempotencyKey); cached != nil {
		s.logger.Debug().
			Str("game_id", g.id).
			Str("idempotency_key", req.IdempotencyKey).
			Msg("Returning cached response for idempotent request")
		return cached, nil
	}

	cmd := req.Command
	if cmd.PlayerName == "" || strings.EqualFold(cmd.PlayerName, p.name) {
		cmd.PlayerName = p.name
	}

	resp := &SubmitMoveResponse{}
	switch next := g.match.NextPlayer(); {
	case cmd.PlayerName != p.name:
		resp.Reason = "command names another player"
	case g.match.GameIsOver():
		resp.Reason = core.ErrGameOver.Error()
	case !g.match.AllWorkersPlaced():
		resp.Reason = core.ErrWorkersNotPlaced.Error()
	case next == nil || !next.Is(p.name):
		resp.Reason = "not your turn"
	default:
		if err := g.match.ApplyMove(cmd); err != nil {
			if !game.IsRejection(err) {
				return nil, status.Errorf(codes.Internal, "failed to apply move: %v", err)
			}
			resp.Reason = err.Error()
		} else {
			resp.Accepted = true
		}
	}
	g.touchLocked()

	resp.Turn = g.match.Turn()
	resp.State = g.match.Snapshot()
	g.idempotencyManager.Store(req.PlayerToken, req.IdempotencyKey, resp)

	s.logger.Debug().
		Str("game_id", g.id).
		Str("command", cmd.String()).
		Bool("accepted", resp.Accepted).
		Str("reason", resp.Reason).
		Msg("Move submitted")
	return resp, nil
}

func (s *Server) GetGame(ctx context.Context, req *GetGameRequest) (*GetGameResponse, error) {
	g, err := s.lookup(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	return &GetGameResponse{Game: g.infoLocked(), State: g.match.Snapshot()}, nil
}

func (s *Server) ListGames(ctx context.Context, _ *emptypb.Empty) (*ListGamesResponse, error) {
	return &ListGamesResponse{Games: s.gameManager.List()}, nil
}

// SuggestMove runs a minimax search for the token's player on a copy of
// the game. The game stays unlocked while the search runs.
func (s *Server) SuggestMove(ctx context.Context, req *SuggestMoveRequest) (*SuggestMoveResponse, error) {
	depth := req.Depth
	if depth <= 0 {
		depth = s.cfg.SuggestDepth
	}
	if depth > MaxSuggestDepth {
		return nil, status.Errorf(codes.InvalidArgument, "depth %d exceeds the maximum of %d", depth, MaxSuggestDepth)
	}

	g, err := s.lookup(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	p, ok := g.playerByTokenLocked(req.PlayerToken)
	var clone *game.Match
	if ok {
		clone = g.match.Clone()
	}
	g.mu.RUnlock()
	if !ok {
		return nil, status.Errorf(codes.PermissionDenied, "invalid player token for game %s", g.id)
	}

	searcher := search.New(
		search.WithDepth(depth),
		search.WithAlphaBeta(true),
		search.WithParallelism(s.cfg.SearchParallelism),
		search.WithLogger(s.logger),
	)
	result, err := searcher.BestMove(ctx, clone, p.name)
	switch {
	case errors.Is(err, search.ErrNotYourTurn), errors.Is(err, search.ErrNoLegalMove), errors.Is(err, core.ErrGameOver):
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, status.FromContextError(err).Err()
	case err != nil:
		return nil, status.Errorf(codes.Internal, "search failed: %v", err)
	}

	return &SuggestMoveResponse{
		Command:    result.Command,
		Score:      result.Score,
		Depth:      depth,
		Candidates: result.Candidates,
		Nodes:      result.Nodes,
	}, nil
}

// WatchGame streams the current state and then every change to it until
// the client goes away or the game is cleaned up
func (s *Server) WatchGame(req *WatchGameRequest, stream GameService_WatchGameServer) error {
	g, err := s.lookup(req.GameID)
	if err != nil {
		return err
	}

	// Register and snapshot under the game lock so no update falls between them
	g.mu.RLock()
	client := g.streamManager.RegisterClient(stream.Context())
	initial := &GameUpdate{
		GameID:    g.id,
		Event:     "state",
		State:     g.match.Snapshot(),
		Timestamp: timestamppb.Now(),
	}
	g.mu.RUnlock()
	defer g.streamManager.UnregisterClient(client.id)

	s.logger.Info().
		Str("game_id", g.id).
		Uint64("watcher_id", client.id).
		Msg("Watcher connected to game stream")

	if err := stream.Send(initial); err != nil {
		return err
	}

	for {
		select {
		case update, ok := <-client.updateChan:
			if !ok {
				return nil
			}
			if err := stream.Send(update); err != nil {
				s.logger.Error().Err(err).
					Str("game_id", g.id).
					Uint64("watcher_id", client.id).
					Msg("Stream error")
				return err
			}
		case <-client.ctx.Done():
			s.logger.Info().
				Str("game_id", g.id).
				Uint64("watcher_id", client.id).
				Msg("Watcher disconnected from game stream")
			return nil
		}
	}
}

func (s *Server) lookup(gameID string) (*gameInstance, error) {
	if gameID == "" {
		return nil, status.Error(codes.InvalidArgument, "game id is required")
	}
	g, exists := s.gameManager.GetGame(gameID)
	if !exists {
		return nil, status.Errorf(codes.NotFound, "game %s not found", gameID)
	}
	return g, nil
}

// statusFromError maps match rejections onto gRPC status codes
func statusFromError(err error) error {
	switch {
	case errors.Is(err, core.ErrEmptyPlayerName),
		errors.Is(err, core.ErrInvalidCoordinates),
		errors.Is(err, core.ErrInvalidWorkerNumber),
		errors.Is(err, core.ErrBuildOnDestination),
		errors.Is(err, core.ErrDuplicatePlacement):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, core.ErrMatchFull):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, core.ErrDuplicatePlayer):
		return status.Error(codes.AlreadyExists, err.Error())
	case game.IsRejection(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}

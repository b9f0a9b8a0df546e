package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mitchelldurbincs/santorini/internal/game"
	"github.com/mitchelldurbincs/santorini/internal/game/core"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "santorini.v1.GameService"

const (
	GameService_CreateGame_FullMethodName   = "/santorini.v1.GameService/CreateGame"
	GameService_JoinGame_FullMethodName     = "/santorini.v1.GameService/JoinGame"
	GameService_PlaceWorkers_FullMethodName = "/santorini.v1.GameService/PlaceWorkers"
	GameService_SubmitMove_FullMethodName   = "/santorini.v1.GameService/SubmitMove"
	GameService_GetGame_FullMethodName      = "/santorini.v1.GameService/GetGame"
	GameService_ListGames_FullMethodName    = "/santorini.v1.GameService/ListGames"
	GameService_SuggestMove_FullMethodName  = "/santorini.v1.GameService/SuggestMove"
	GameService_WatchGame_FullMethodName    = "/santorini.v1.GameService/WatchGame"
)

// GameInfo summarizes a hosted game
type GameInfo struct {
	GameID       string                 `json:"gameId"`
	Phase        string                 `json:"phase"`
	Players      []string               `json:"players"`
	Turn         int                    `json:"turn"`
	Winner       string                 `json:"winner,omitempty"`
	Watchers     int                    `json:"watchers"`
	CreatedAt    *timestamppb.Timestamp `json:"createdAt"`
	LastActivity *timestamppb.Timestamp `json:"lastActivity"`
}

type CreateGameRequest struct {
	// GameID is optional. A random id is assigned when empty.
	GameID string `json:"gameId,omitempty"`
}

type CreateGameResponse struct {
	Game GameInfo `json:"game"`
}

type JoinGameRequest struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

type JoinGameResponse struct {
	PlayerToken string        `json:"playerToken"`
	Seat        int           `json:"seat"`
	State       game.Snapshot `json:"state"`
}

type PlaceWorkersRequest struct {
	GameID      string                   `json:"gameId"`
	PlayerToken string                   `json:"playerToken"`
	Placement   core.PlaceWorkersCommand `json:"placement"`
}

type PlaceWorkersResponse struct {
	State game.Snapshot `json:"state"`
}

type SubmitMoveRequest struct {
	GameID         string           `json:"gameId"`
	PlayerToken    string           `json:"playerToken"`
	IdempotencyKey string           `json:"idempotencyKey,omitempty"`
	Command        core.MoveCommand `json:"command"`
}

// SubmitMoveResponse reports whether a move was applied. Gameplay
// rejections are answered here rather than with a status error so that
// they can be replayed for a repeated idempotency key.
type SubmitMoveResponse struct {
	Accepted bool          `json:"accepted"`
	Reason   string        `json:"reason,omitempty"`
	Turn     int           `json:"turn"`
	State    game.Snapshot `json:"state"`
}

type GetGameRequest struct {
	GameID string `json:"gameId"`
}

type GetGameResponse struct {
	Game  GameInfo      `json:"game"`
	State game.Snapshot `json:"state"`
}

type ListGamesResponse struct {
	Games []GameInfo `json:"games"`
}

type SuggestMoveRequest struct {
	GameID      string `json:"gameId"`
	PlayerToken string `json:"playerToken"`
	// Depth overrides the server's default search depth when positive
	Depth int `json:"depth,omitempty"`
}

type SuggestMoveResponse struct {
	Command    core.MoveCommand `json:"command"`
	Score      int              `json:"score"`
	Depth      int              `json:"depth"`
	Candidates int              `json:"candidates"`
	Nodes      int64            `json:"nodes"`
}

type WatchGameRequest struct {
	GameID string `json:"gameId"`
}

// GameUpdate is one message of a WatchGame stream. The first update of
// every stream carries the event "state" and the full current state.
type GameUpdate struct {
	GameID    string                 `json:"gameId"`
	Event     string                 `json:"event"`
	State     game.Snapshot          `json:"state"`
	Timestamp *timestamppb.Timestamp `json:"timestamp"`
}

// GameServiceServer is the server API for the Santorini game service
type GameServiceServer interface {
	CreateGame(context.Context, *CreateGameRequest) (*CreateGameResponse, error)
	JoinGame(context.Context, *JoinGameRequest) (*JoinGameResponse, error)
	PlaceWorkers(context.Context, *PlaceWorkersRequest) (*PlaceWorkersResponse, error)
	SubmitMove(context.Context, *SubmitMoveRequest) (*SubmitMoveResponse, error)
	GetGame(context.Context, *GetGameRequest) (*GetGameResponse, error)
	ListGames(context.Context, *emptypb.Empty) (*ListGamesResponse, error)
	SuggestMove(context.Context, *SuggestMoveRequest) (*SuggestMoveResponse, error)
	WatchGame(*WatchGameRequest, GameService_WatchGameServer) error
}

type GameService_WatchGameServer interface {
	Send(*GameUpdate) error
	grpc.ServerStream
}

type gameServiceWatchGameServer struct {
	grpc.ServerStream
}

func (x *gameServiceWatchGameServer) Send(m *GameUpdate) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterGameServiceServer registers srv on s
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameService_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(GameServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GameServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GameServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchGameHandler(srv any, stream grpc.ServerStream) error {
	m := new(WatchGameRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GameServiceServer).WatchGame(m, &gameServiceWatchGameServer{stream})
}

// GameService_ServiceDesc is the grpc.ServiceDesc for GameService
var GameService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateGame", Handler: unaryHandler(GameService_CreateGame_FullMethodName, GameServiceServer.CreateGame)},
		{MethodName: "JoinGame", Handler: unaryHandler(GameService_JoinGame_FullMethodName, GameServiceServer.JoinGame)},
		{MethodName: "PlaceWorkers", Handler: unaryHandler(GameService_PlaceWorkers_FullMethodName, GameServiceServer.PlaceWorkers)},
		{MethodName: "SubmitMove", Handler: unaryHandler(GameService_SubmitMove_FullMethodName, GameServiceServer.SubmitMove)},
		{MethodName: "GetGame", Handler: unaryHandler(GameService_GetGame_FullMethodName, GameServiceServer.GetGame)},
		{MethodName: "ListGames", Handler: unaryHandler(GameService_ListGames_FullMethodName, GameServiceServer.ListGames)},
		{MethodName: "SuggestMove", Handler: unaryHandler(GameService_SuggestMove_FullMethodName, GameServiceServer.SuggestMove)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchGame",
			Handler:       watchGameHandler,
			ServerStreams: true,
		},
	},
	Metadata: "santorini/v1/game.proto",
}

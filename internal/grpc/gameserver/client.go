package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Client calls a GameService over cc. Every call is sent with the json
// content subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateGame(ctx context.Context, in *CreateGameRequest, opts ...grpc.CallOption) (*CreateGameResponse, error) {
	return invoke[CreateGameResponse](ctx, c.cc, GameService_CreateGame_FullMethodName, in, opts)
}

func (c *Client) JoinGame(ctx context.Context, in *JoinGameRequest, opts ...grpc.CallOption) (*JoinGameResponse, error) {
	return invoke[JoinGameResponse](ctx, c.cc, GameService_JoinGame_FullMethodName, in, opts)
}

func (c *Client) PlaceWorkers(ctx context.Context, in *PlaceWorkersRequest, opts ...grpc.CallOption) (*PlaceWorkersResponse, error) {
	return invoke[PlaceWorkersResponse](ctx, c.cc, GameService_PlaceWorkers_FullMethodName, in, opts)
}

func (c *Client) SubmitMove(ctx context.Context, in *SubmitMoveRequest, opts ...grpc.CallOption) (*SubmitMoveResponse, error) {
	return invoke[SubmitMoveResponse](ctx, c.cc, GameService_SubmitMove_FullMethodName, in, opts)
}

func (c *Client) GetGame(ctx context.Context, in *GetGameRequest, opts ...grpc.CallOption) (*GetGameResponse, error) {
	return invoke[GetGameResponse](ctx, c.cc, GameService_GetGame_FullMethodName, in, opts)
}

func (c *Client) ListGames(ctx context.Context, opts ...grpc.CallOption) (*ListGamesResponse, error) {
	return invoke[ListGamesResponse](ctx, c.cc, GameService_ListGames_FullMethodName, &emptypb.Empty{}, opts)
}

func (c *Client) SuggestMove(ctx context.Context, in *SuggestMoveRequest, opts ...grpc.CallOption) (*SuggestMoveResponse, error) {
	return invoke[SuggestMoveResponse](ctx, c.cc, GameService_SuggestMove_FullMethodName, in, opts)
}

type GameService_WatchGameClient interface {
	Recv() (*GameUpdate, error)
	grpc.ClientStream
}

type gameServiceWatchGameClient struct {
	grpc.ClientStream
}

func (x *gameServiceWatchGameClient) Recv() (*GameUpdate, error) {
	m := new(GameUpdate)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// WatchGame opens a stream of updates for one game
func (c *Client) WatchGame(ctx context.Context, in *WatchGameRequest, opts ...grpc.CallOption) (GameService_WatchGameClient, error) {
	stream, err := c.cc.NewStream(ctx, &GameService_ServiceDesc.Streams[0], GameService_WatchGame_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &gameServiceWatchGameClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

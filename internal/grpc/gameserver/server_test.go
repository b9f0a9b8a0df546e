package gameserver

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/search"
	"github.com/mitchelldurbincs/santorini/internal/testutil"
)

const bufSize = 1024 * 1024

var c = testutil.C

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CleanupInterval = 0
	cfg.SuggestDepth = 2
	return cfg
}

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T, cfg Config) (*Client, *Server) {
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	srv := NewServer(cfg, testutil.NopLogger())
	RegisterGameServiceServer(s, srv)

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		srv.Close()
		s.Stop()
		lis.Close()
	})
	return NewClient(conn), srv
}

type seatedGame struct {
	id    string
	blue  string
	white string
}

// seatGame creates a game and joins Blue then White
func seatGame(t *testing.T, client *Client) seatedGame {
	ctx := context.Background()
	created, err := client.CreateGame(ctx, &CreateGameRequest{})
	require.NoError(t, err)

	blue, err := client.JoinGame(ctx, &JoinGameRequest{GameID: created.Game.GameID, PlayerName: testutil.Blue})
	require.NoError(t, err)
	white, err := client.JoinGame(ctx, &JoinGameRequest{GameID: created.Game.GameID, PlayerName: testutil.White})
	require.NoError(t, err)
	return seatedGame{id: created.Game.GameID, blue: blue.PlayerToken, white: white.PlayerToken}
}

// placedGame seats both players and places Blue in the west corners and
// White in the east corners. Blue moves first.
func placedGame(t *testing.T, client *Client) seatedGame {
	g := seatGame(t, client)
	placeWorkers(t, client, g)
	return g
}

func placeWorkers(t *testing.T, client *Client, g seatedGame) {
	ctx := context.Background()
	_, err := client.PlaceWorkers(ctx, &PlaceWorkersRequest{
		GameID: g.id, PlayerToken: g.blue,
		Placement: core.PlaceWorkersCommand{WorkerOne: c(0, 0), WorkerTwo: c(0, 4)},
	})
	require.NoError(t, err)
	_, err = client.PlaceWorkers(ctx, &PlaceWorkersRequest{
		GameID: g.id, PlayerToken: g.white,
		Placement: core.PlaceWorkersCommand{WorkerOne: c(4, 0), WorkerTwo: c(4, 4)},
	})
	require.NoError(t, err)
}

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, status.Code(err), "%v", err)
}

func TestCreateGame(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx := context.Background()

	first, err := client.CreateGame(ctx, &CreateGameRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Game.GameID)
	assert.Equal(t, "Registering", first.Game.Phase)
	assert.Empty(t, first.Game.Players)
	assert.NotNil(t, first.Game.CreatedAt)

	second, err := client.CreateGame(ctx, &CreateGameRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, first.Game.GameID, second.Game.GameID)

	named, err := client.CreateGame(ctx, &CreateGameRequest{GameID: "final"})
	require.NoError(t, err)
	assert.Equal(t, "final", named.Game.GameID)

	_, err = client.CreateGame(ctx, &CreateGameRequest{GameID: "final"})
	requireCode(t, err, codes.AlreadyExists)
}

func TestCreateGame_AtCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGames = 2
	client, srv := setupTestServer(t, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.CreateGame(ctx, &CreateGameRequest{})
		require.NoError(t, err)
	}
	_, err := client.CreateGame(ctx, &CreateGameRequest{})
	requireCode(t, err, codes.ResourceExhausted)
	assert.Equal(t, 2, srv.ActiveGames())
}

func TestJoinGame(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx := context.Background()

	created, err := client.CreateGame(ctx, &CreateGameRequest{})
	require.NoError(t, err)
	gameID := created.Game.GameID

	blue, err := client.JoinGame(ctx, &JoinGameRequest{GameID: gameID, PlayerName: testutil.Blue})
	require.NoError(t, err)
	assert.Equal(t, 1, blue.Seat)
	assert.NotEmpty(t, blue.PlayerToken)
	assert.Equal(t, gameID, blue.State.GameID)

	again, err := client.JoinGame(ctx, &JoinGameRequest{GameID: gameID, PlayerName: "BLUE"})
	require.NoError(t, err)
	assert.Equal(t, blue.PlayerToken, again.PlayerToken)
	assert.Equal(t, 1, again.Seat)

	white, err := client.JoinGame(ctx, &JoinGameRequest{GameID: gameID, PlayerName: testutil.White})
	require.NoError(t, err)
	assert.Equal(t, 2, white.Seat)
	assert.NotEqual(t, blue.PlayerToken, white.PlayerToken)
	assert.Equal(t, "Placing", white.State.Phase)

	_, err = client.JoinGame(ctx, &JoinGameRequest{GameID: gameID, PlayerName: "red"})
	requireCode(t, err, codes.ResourceExhausted)
}

func TestJoinGame_Errors(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx := context.Background()

	_, err := client.JoinGame(ctx, &JoinGameRequest{GameID: "missing", PlayerName: testutil.Blue})
	requireCode(t, err, codes.NotFound)

	_, err = client.JoinGame(ctx, &JoinGameRequest{PlayerName: testutil.Blue})
	requireCode(t, err, codes.InvalidArgument)

	created, err := client.CreateGame(ctx, &CreateGameRequest{})
	require.NoError(t, err)
	_, err = client.JoinGame(ctx, &JoinGameRequest{GameID: created.Game.GameID})
	requireCode(t, err, codes.InvalidArgument)
}

func TestPlaceWorkers(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx := context.Background()
	g := seatGame(t, client)
	placement := core.PlaceWorkersCommand{WorkerOne: c(1, 1), WorkerTwo: c(3, 3)}

	_, err := client.PlaceWorkers(ctx, &PlaceWorkersRequest{GameID: g.id, PlayerToken: "forged", Placement: placement})
	requireCode(t, err, codes.PermissionDenied)

	_, err = client.PlaceWorkers(ctx, &PlaceWorkersRequest{
		GameID: g.id, PlayerToken: g.white,
		Placement: core.PlaceWorkersCommand{WorkerOne: c(2, 2), WorkerTwo: c(2, 2)},
	})
	requireCode(t, err, codes.InvalidArgument)

	resp, err := client.PlaceWorkers(ctx, &PlaceWorkersRequest{GameID: g.id, PlayerToken: g.white, Placement: placement})
	require.NoError(t, err)
	assert.Equal(t, testutil.White, resp.State.FirstPlacer)
	assert.Equal(t, testutil.Blue, resp.State.NextPlayer)

	// White placed first and has no workers left to place
	_, err = client.PlaceWorkers(ctx, &PlaceWorkersRequest{GameID: g.id, PlayerToken: g.white, Placement: placement})
	requireCode(t, err, codes.FailedPrecondition)

	_, err = client.PlaceWorkers(ctx, &PlaceWorkersRequest{
		GameID: g.id, PlayerToken: g.blue,
		Placement: core.PlaceWorkersCommand{WorkerOne: c(1, 1), WorkerTwo: c(0, 0)},
	})
	requireCode(t, err, codes.FailedPrecondition)

	resp, err = client.PlaceWorkers(ctx, &PlaceWorkersRequest{
		GameID: g.id, PlayerToken: g.blue,
		Placement: core.PlaceWorkersCommand{WorkerOne: c(0, 0), WorkerTwo: c(4, 4)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Active", resp.State.Phase)
	assert.Equal(t, testutil.White, resp.State.NextPlayer)
}

func TestPlaceWorkers_BeforeBothPlayersJoin(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx := context.Background()

	created, err := client.CreateGame(ctx, &CreateGameRequest{})
	require.NoError(t, err)
	blue, err := client.JoinGame(ctx, &JoinGameRequest{GameID: created.Game.GameID, PlayerName: testutil.Blue})
	require.NoError(t, err)

	_, err = client.PlaceWorkers(ctx, &PlaceWorkersRequest{
		GameID: created.Game.GameID, PlayerToken: blue.PlayerToken,
		Placement: core.PlaceWorkersCommand{WorkerOne: c(0, 0), WorkerTwo: c(1, 1)},
	})
	requireCode(t, err, codes.FailedPrecondition)
}

func TestSubmitMove(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx := context.Background()
	g := placedGame(t, client)

	move := core.NewMoveCommand(testutil.Blue, 1, c(1, 1), c(2, 2))

	tests := []struct {
		name   string
		token  string
		cmd    core.MoveCommand
		reason string
	}{
		{"out of turn", g.white, core.NewMoveCommand(testutil.White, 1, c(3, 1), c(2, 2)), "not your turn"},
		{"another player's command", g.blue, core.NewMoveCommand(testutil.White, 1, c(3, 1), c(2, 2)), "command names another player"},
		{"illegal move", g.blue, core.NewMoveCommand(testutil.Blue, 1, c(2, 2), c(3, 3)), core.ErrIllegalMove.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.SubmitMove(ctx, &SubmitMoveRequest{GameID: g.id, PlayerToken: tt.token, Command: tt.cmd})
			require.NoError(t, err)
			assert.False(t, resp.Accepted)
			assert.Contains(t, resp.Reason, tt.reason)
			assert.Equal(t, 0, resp.Turn)
		})
	}

	// The player name may be omitted; it defaults to the token's player
	move.PlayerName = ""
	resp, err := client.SubmitMove(ctx, &SubmitMoveRequest{GameID: g.id, PlayerToken: g.blue, Command: move})
	require.NoError(t, err)
	assert.True(t, resp.Accepted, resp.Reason)
	assert.Equal(t, 1, resp.Turn)
	assert.Equal(t, testutil.Blue, resp.State.History[0].PlayerName)
	assert.Equal(t, testutil.White, resp.State.NextPlayer)

	_, err = client.SubmitMove(ctx, &SubmitMoveRequest{GameID: g.id, PlayerToken: "forged", Command: move})
	requireCode(t, err, codes.PermissionDenied)
}

func TestSubmitMove_Idempotent(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx := context.Background()
	g := placedGame(t, client)

	req := &SubmitMoveRequest{
		GameID: g.id, PlayerToken: g.blue, IdempotencyKey: "turn-1",
		Command: core.NewMoveCommand(testutil.Blue, 1, c(1, 1), c(2, 2)),
	}
	first, err := client.SubmitMove(ctx, req)
	require.NoError(t, err)
	require.True(t, first.Accepted)

	// A retry is answered from the cache even though Blue is now out of turn
	retry, err := client.SubmitMove(ctx, req)
	require.NoError(t, err)
	assert.True(t, retry.Accepted)
	assert.Equal(t, first.Turn, retry.Turn)

	got, err := client.GetGame(ctx, &GetGameRequest{GameID: g.id})
	require.NoError(t, err)
	assert.Equal(t, 1, got.State.Turn)

	req.IdempotencyKey = "turn-1b"
	fresh, err := client.SubmitMove(ctx, req)
	require.NoError(t, err)
	assert.False(t, fresh.Accepted)
	assert.Equal(t, "not your turn", fresh.Reason)
}

func TestSubmitMove_Win(t *testing.T) {
	client, srv := setupTestServer(t, testConfig())
	ctx := context.Background()
	g := seatGame(t, client)

	inst, ok := srv.gameManager.GetGame(g.id)
	require.True(t, ok)
	inst.mu.Lock()
	require.True(t, inst.match.Island().SetLevel(c(0, 0), 2))
	require.True(t, inst.match.Island().SetLevel(c(1, 1), 3))
	inst.mu.Unlock()
	placeWorkers(t, client, g)

	resp, err := client.SubmitMove(ctx, &SubmitMoveRequest{
		GameID: g.id, PlayerToken: g.blue,
		Command: core.NewMoveCommand(testutil.Blue, 1, c(1, 1), c(2, 2)),
	})
	require.NoError(t, err)
	require.True(t, resp.Accepted)
	assert.Equal(t, testutil.Blue, resp.State.Winner)
	assert.Equal(t, "Over", resp.State.Phase)

	after, err := client.SubmitMove(ctx, &SubmitMoveRequest{
		GameID: g.id, PlayerToken: g.white,
		Command: core.NewMoveCommand(testutil.White, 1, c(3, 1), c(3, 2)),
	})
	require.NoError(t, err)
	assert.False(t, after.Accepted)
	assert.Equal(t, core.ErrGameOver.Error(), after.Reason)

	info, err := client.GetGame(ctx, &GetGameRequest{GameID: g.id})
	require.NoError(t, err)
	assert.Equal(t, testutil.Blue, info.Game.Winner)
}

func TestGetGameAndListGames(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx := context.Background()
	g := placedGame(t, client)
	_, err := client.CreateGame(ctx, &CreateGameRequest{GameID: "empty"})
	require.NoError(t, err)

	got, err := client.GetGame(ctx, &GetGameRequest{GameID: g.id})
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.Blue, testutil.White}, got.Game.Players)
	assert.Equal(t, "Active", got.Game.Phase)
	assert.Len(t, got.State.Cells, core.CellCount)

	_, err = client.GetGame(ctx, &GetGameRequest{GameID: "missing"})
	requireCode(t, err, codes.NotFound)

	list, err := client.ListGames(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(list.Games))
	for _, info := range list.Games {
		ids = append(ids, info.GameID)
	}
	assert.ElementsMatch(t, []string{g.id, "empty"}, ids)
}

func TestSuggestMove(t *testing.T) {
	client, srv := setupTestServer(t, testConfig())
	ctx := context.Background()
	g := placedGame(t, client)

	resp, err := client.SuggestMove(ctx, &SuggestMoveRequest{GameID: g.id, PlayerToken: g.blue})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Depth)
	assert.Positive(t, resp.Nodes)

	inst, _ := srv.gameManager.GetGame(g.id)
	inst.mu.RLock()
	legal := inst.match.LegalCommands(testutil.Blue)
	turn := inst.match.Turn()
	inst.mu.RUnlock()
	assert.Contains(t, legal, resp.Command)
	assert.Equal(t, resp.Candidates, len(legal))
	assert.Zero(t, turn, "suggesting must not play the move")

	_, err = client.SuggestMove(ctx, &SuggestMoveRequest{GameID: g.id, PlayerToken: g.white})
	requireCode(t, err, codes.FailedPrecondition)

	_, err = client.SuggestMove(ctx, &SuggestMoveRequest{GameID: g.id, PlayerToken: g.blue, Depth: MaxSuggestDepth + 1})
	requireCode(t, err, codes.InvalidArgument)

	_, err = client.SuggestMove(ctx, &SuggestMoveRequest{GameID: g.id, PlayerToken: "forged"})
	requireCode(t, err, codes.PermissionDenied)
}

func TestNewServer_ClampsSuggestDepth(t *testing.T) {
	cfg := testConfig()
	cfg.SuggestDepth = MaxSuggestDepth + 1
	srv := NewServer(cfg, testutil.NopLogger())
	defer srv.Close()
	assert.Equal(t, MaxSuggestDepth, srv.cfg.SuggestDepth, "a default the server would reject is clamped")

	cfg.SuggestDepth = 0
	srv = NewServer(cfg, testutil.NopLogger())
	defer srv.Close()
	assert.Equal(t, search.DefaultDepth, srv.cfg.SuggestDepth)
}

func TestWatchGame(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	g := placedGame(t, client)

	stream, err := client.WatchGame(ctx, &WatchGameRequest{GameID: g.id})
	require.NoError(t, err)

	initial, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "state", initial.Event)
	assert.Equal(t, g.id, initial.GameID)
	assert.Equal(t, 0, initial.State.Turn)
	assert.NotNil(t, initial.Timestamp)

	resp, err := client.SubmitMove(ctx, &SubmitMoveRequest{
		GameID: g.id, PlayerToken: g.blue,
		Command: core.NewMoveCommand(testutil.Blue, 1, c(1, 1), c(2, 2)),
	})
	require.NoError(t, err)
	require.True(t, resp.Accepted)

	update, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "move.applied", update.Event)
	assert.Equal(t, 1, update.State.Turn)
	assert.Equal(t, testutil.White, update.State.NextPlayer)
}

func TestWatchGame_EndsWhenGameIsCleanedUp(t *testing.T) {
	client, srv := setupTestServer(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := client.CreateGame(ctx, &CreateGameRequest{})
	require.NoError(t, err)
	stream, err := client.WatchGame(ctx, &WatchGameRequest{GameID: created.Game.GameID})
	require.NoError(t, err)
	_, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Watchers())

	removed := srv.gameManager.cleanupGames(time.Now().Add(time.Hour))
	assert.Equal(t, []string{created.Game.GameID}, removed)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWatchGame_UnknownGame(t *testing.T) {
	client, _ := setupTestServer(t, testConfig())
	stream, err := client.WatchGame(context.Background(), &WatchGameRequest{GameID: "missing"})
	require.NoError(t, err)
	_, err = stream.Recv()
	requireCode(t, err, codes.NotFound)
}

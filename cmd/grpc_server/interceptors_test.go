package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeStream struct {
	grpc.ServerStream
}

func (fakeStream) Context() context.Context { return context.Background() }

func TestCallLevel(t *testing.T) {
	tests := []struct {
		code codes.Code
		want zerolog.Level
	}{
		{codes.OK, zerolog.InfoLevel},
		{codes.NotFound, zerolog.WarnLevel},
		{codes.FailedPrecondition, zerolog.WarnLevel},
		{codes.Internal, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, callLevel(tt.code))
		})
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	info := &grpc.UnaryServerInfo{FullMethod: "/santorini.v1.GameService/SubmitMove"}

	_, err := recoveryInterceptor(logger)(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Contains(t, buf.String(), "boom")

	resp, err := recoveryInterceptor(logger)(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	info := &grpc.UnaryServerInfo{FullMethod: "/santorini.v1.GameService/GetGame"}

	_, err := loggingInterceptor(logger)(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "game missing not found")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Contains(t, buf.String(), `"code":"NotFound"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "/santorini.v1.GameService/GetGame")
}

func TestStreamInterceptors(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	info := &grpc.StreamServerInfo{FullMethod: "/santorini.v1.GameService/WatchGame", IsServerStream: true}

	err := streamRecoveryInterceptor(logger)(nil, fakeStream{}, info, func(srv interface{}, ss grpc.ServerStream) error {
		panic(errors.New("stream boom"))
	})
	assert.Equal(t, codes.Internal, status.Code(err))

	buf.Reset()
	err = streamLoggingInterceptor(logger)(nil, fakeStream{}, info, func(srv interface{}, ss grpc.ServerStream) error {
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"is_server_stream":true`)
	assert.Contains(t, buf.String(), `"code":"OK"`)
}

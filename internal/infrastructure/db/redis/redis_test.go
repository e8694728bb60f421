package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, Ping(context.Background(), client, time.Second))
}

func TestConnect_WithPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	_, err := Connect(context.Background(), Config{Addr: mr.Addr(), Timeout: time.Second})
	require.Error(t, err)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr(), Password: "s3cret"})
	require.NoError(t, err)
	_ = client.Close()
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StoreBackend = config.StoreMemory
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_Memory(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.IsType(t, &repomanager.MemoryRepositoryManager{}, app.store)
	assert.NotNil(t, app.services.External)
	assert.NotNil(t, app.gate)
}

func TestNewApp_BadDigestAlgorithm(t *testing.T) {
	c := memoryConfig()
	c.DigestAlgorithm = "sha1"
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "hasher init error")
}

func TestNewApp_StoreFailure(t *testing.T) {
	orig := openStore
	openStore = func(context.Context, string, string, bool) (repomanager.RepositoryManager, error) {
		return nil, errors.New("connection refused")
	}
	t.Cleanup(func() { openStore = orig })

	_, err := NewApp(context.Background(), memoryConfig())
	assert.ErrorContains(t, err, "store init error: connection refused")
}

func TestRun_StopsOnCancel(t *testing.T) {
	c := memoryConfig()
	c.SessionIdleTTL = time.Minute
	c.SessionSweepInterval = 10 * time.Millisecond
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/projectkeeper/internal/logging"
	"github.com/dmitrijs2005/projectkeeper/internal/server/config"
	"github.com/dmitrijs2005/projectkeeper/internal/server/repositories/repomanager"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCAddr = "127.0.0.1:0"
	c.SecretKey = "test-secret"
	c.BcryptCost = 4
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_RequiresSecret(t *testing.T) {
	c := testConfig()
	c.SecretKey = ""

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, config.ErrMissingSecretKey)
}

func TestNewApp_InMemory(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Nil(t, app.db)
	assert.NoError(t, app.Close())
}

func TestRun_StopsOnCancel(t *testing.T) {
	app := newApp(testConfig(), logging.Nop(), repomanager.NewInMemoryRepositoryManager(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("app exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestRun_ListenFailureStopsEverything(t *testing.T) {
	c := testConfig()
	c.HTTPAddr = "127.0.0.1:99999"
	app := newApp(c, logging.Nop(), repomanager.NewInMemoryRepositoryManager(), nil)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after listen failure")
	}
}

func TestClose_ClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	app := newApp(testConfig(), logging.Nop(), repomanager.NewPostgresRepositoryManager(), db)
	require.NoError(t, app.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/starbase/internal/config"
	"github.com/rpggio/starbase/internal/domain/queue"
)

func TestCommands_SeedQueueAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starbase.db")
	cfg := config.Default()

	run := func(args ...string) error {
		cmd := newRootCmd(cfg)
		cmd.SetArgs(append(args, "--db", path))
		return cmd.ExecuteContext(context.Background())
	}

	require.NoError(t, run("seed", "--id", "e1", "--owner", "o1", "--name", "Vega",
		"--coord", "A01:02:03:04", "--building", "research_labs=2", "--credits", "500"))
	require.NoError(t, run("queue", "start", "--empire", "e1", "--coord", "A01:02:03:04", "--item", "energy"))

	err := run("queue", "start", "--empire", "e1", "--coord", "A01:02:03:04", "--item", "energy")
	require.ErrorIs(t, err, queue.ErrAlreadyInProgress)

	require.NoError(t, run("tick"))
	require.NoError(t, run("queue", "list", "--empire", "e1"))
	require.NoError(t, run("status", "--empire", "e1", "--breakdown"))
	require.NoError(t, run("ledger", "--empire", "e1"))
	require.NoError(t, run("reconcile"))
	require.NoError(t, run("fleet", "list", "--empire", "e1"))
	require.NoError(t, run("research", "--empire", "e1"))

	e, err := openEnv(context.Background(), cfg)
	require.NoError(t, err)
	defer e.Close()

	emp, err := e.svc.Empires.Get(context.Background(), "e1")
	require.NoError(t, err)
	// A payout boundary may fall between seed and tick.
	require.GreaterOrEqual(t, emp.Credits, int64(480))

	txs, err := e.svc.Ledger.History(context.Background(), "e1", 10)
	require.NoError(t, err)
	require.NotEmpty(t, txs)

	items, err := e.svc.Queue.List(context.Background(), "e1", queue.ListOptions{Status: queue.StatusPending})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Paid)
}

func TestCommands_MissingRequiredFlag(t *testing.T) {
	cmd := newRootCmd(config.Default())
	cmd.SetArgs([]string{"status", "--db", filepath.Join(t.TempDir(), "x.db")})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

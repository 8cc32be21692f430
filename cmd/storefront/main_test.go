package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog"
	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog/sqlite"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMenuList(t *testing.T) {
	t.Setenv("MENU_PATH", "")

	out, err := run(t, "menu", "list", "--category", "sides", "--sort", "price-low")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "PRICE")
	assert.Contains(t, lines[1], "Fresh Hummus")
	assert.Contains(t, lines[1], "8.99")
	assert.Contains(t, lines[4], "14.99")
}

func TestCheckouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkouts.db")
	t.Setenv("CHECKOUT_LOG_PATH", path)

	repo, err := sqlite.Open(path)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, checkoutlog.NewEntry(ctx, "order-1", checkoutlog.StatusStarted, "", `{}`, nil)))
	require.NoError(t, repo.Save(ctx, checkoutlog.NewEntry(ctx, "order-1", checkoutlog.StatusStepDone, "lock_cart", "", nil)))
	require.NoError(t, repo.Close())

	out, err := run(t, "checkouts", "order-1")
	require.NoError(t, err)
	assert.Contains(t, out, "STARTED")
	assert.Contains(t, out, "lock_cart")

	_, err = run(t, "checkouts", "order-unknown")
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestEvictInterval(t *testing.T) {
	assert.Equal(t, 30*time.Minute, evictInterval(2*time.Hour))
	assert.Equal(t, time.Second, evictInterval(time.Second))
}

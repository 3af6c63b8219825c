package tagging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchRules(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.toml", "[[rules]]\nname = \"One\"\nkeywords = [\"one\"]\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tg := New()
	require.NoError(t, tg.WatchRules(ctx, path))
	require.Len(t, tg.Rules(), 1)

	updated := tomlRules
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	assert.Eventually(t, func() bool {
		return len(tg.Rules()) == 2
	}, 5*time.Second, 50*time.Millisecond)

	// A broken file keeps the last good rules.
	require.NoError(t, os.WriteFile(path, []byte("[[rules]]\nname = \"Bad\"\npattern = \"(\"\n"), 0o600))
	time.Sleep(3 * reloadDelay)
	assert.Len(t, tg.Rules(), 2)
}

func TestWatchRules_InitialLoadFails(t *testing.T) {
	err := New().WatchRules(context.Background(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

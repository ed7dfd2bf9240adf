package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/prospector/internal/scoring"
)

func TestLoadReturnsDefaultsWhenMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "settings.yaml"))

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, scoring.GoalTargetAudience, cfg.Goal)
	assert.False(t, cfg.HasCredential())
}

func TestSaveThenLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewStore(path)

	want := Config{
		Profile: UserProfile{Title: "Founder", Industry: "SaaS", Skills: "Go, sales"},
		APIKey:  "secret",
		Goal:    scoring.GoalIndustryLeaders,
	}
	require.NoError(t, store.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.HasCredential())
}

func TestLoadNormalizesGoal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis_goal: peer networking\n"), 0o600))

	cfg, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, scoring.GoalPeerNetworking, cfg.Goal)

	require.NoError(t, os.WriteFile(path, []byte("user_profile:\n  title: CTO\n"), 0o600))

	cfg, err = NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "CTO", cfg.Profile.Title)
	assert.Equal(t, scoring.DefaultGoal, cfg.Goal)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_profile: [\n"), 0o600))

	cfg, err := NewStore(path).Load()
	require.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestKeyedStoreFallback(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	store := WithFallbackKey(NewStore(path), " from-file ")

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)

	cfg.Profile.Title = "CTO"
	require.NoError(t, store.Save(cfg))

	raw, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, raw.APIKey, "fallback key must stay out of the settings file")
	assert.Equal(t, "CTO", raw.Profile.Title)

	cfg.APIKey = "typed"
	require.NoError(t, store.Save(cfg))

	cfg, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "typed", cfg.APIKey, "a stored key wins over the fallback")
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func providerNames(cfg *RootConfig) []string {
	var names []string
	for _, p := range cfg.ProviderList() {
		names = append(names, p.Name)
	}
	return names
}

func TestStore_EnsureExists(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested"))

	created, err := store.EnsureExists()
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, store.Path())

	first, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	created, err = store.EnsureExists()
	require.NoError(t, err)
	assert.False(t, created)

	second, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, "gpt-4o", gjson.GetBytes(first, "default_model").String())
	assert.Equal(t, "openai_official", gjson.GetBytes(first, "current_provider").String())
	assert.True(t, gjson.GetBytes(first, "providers.ctyun_wishub.extra_payload.max_tokens").Exists())
}

func TestStore_Load(t *testing.T) {
	t.Run("creates default on first run", func(t *testing.T) {
		store := NewStore(t.TempDir())
		cfg, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"openai_official", "ctyun_wishub"}, providerNames(cfg))
		p, ok := cfg.Provider("openai_official")
		require.True(t, ok)
		assert.Equal(t, "openai_official", p.Name)
	})

	t.Run("keeps provider order from file", func(t *testing.T) {
		store := NewStore(t.TempDir())
		doc := `{
			"default_model": "z1",
			"current_provider": "zeta",
			"providers": {
				"zeta":  {"api_key": "k", "api_base": "https://z.example.com", "models": ["z1", "dup"]},
				"alpha": {"api_key": "k", "api_base": "https://a.example.com", "models": ["dup"]}
			}
		}`
		require.NoError(t, os.WriteFile(store.Path(), []byte(doc), 0o600))

		cfg, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha"}, providerNames(cfg))

		p, ok := cfg.ResolveModel("dup")
		require.True(t, ok)
		assert.Equal(t, "zeta", p.Name)
	})

	t.Run("corrupt file", func(t *testing.T) {
		store := NewStore(t.TempDir())
		require.NoError(t, os.WriteFile(store.Path(), []byte(`{"providers": {`), 0o600))

		_, err := store.Load()
		require.ErrorIs(t, err, ErrConfigCorrupt)
		assert.Contains(t, err.Error(), store.Path())
	})

	t.Run("wrong shape", func(t *testing.T) {
		store := NewStore(t.TempDir())
		require.NoError(t, os.WriteFile(store.Path(), []byte(`{"providers": []}`), 0o600))

		_, err := store.Load()
		assert.ErrorIs(t, err, ErrConfigCorrupt)
	})

	t.Run("invalid api base", func(t *testing.T) {
		store := NewStore(t.TempDir())
		doc := `{"providers": {"bad": {"api_key": "k", "api_base": "", "models": ["m"]}}}`
		require.NoError(t, os.WriteFile(store.Path(), []byte(doc), 0o600))

		_, err := store.Load()
		require.ErrorIs(t, err, ErrConfigCorrupt)
		assert.Contains(t, err.Error(), "api_base")
	})

	t.Run("missing providers", func(t *testing.T) {
		store := NewStore(t.TempDir())
		require.NoError(t, os.WriteFile(store.Path(), []byte(`{"default_model": "x"}`), 0o600))

		cfg, err := store.Load()
		require.NoError(t, err)
		assert.NotNil(t, cfg.Providers)
		assert.Equal(t, 0, cfg.Providers.Len())
	})
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	want := newTestConfig()
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, want.DefaultModel, got.DefaultModel)
	assert.Equal(t, want.CurrentProvider, got.CurrentProvider)
	assert.Equal(t, want.ProviderList(), got.ProviderList())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_Patch(t *testing.T) {
	store := NewStore(t.TempDir())
	doc := `{
    "default_model": "gpt-4o",
    "current_provider": "alpha",
    "theme": "dark",
    "providers": {
        "alpha": {"api_key": "k", "api_base": "https://a.example.com", "models": ["gpt-4o"]},
        "beta": {"api_key": "k", "api_base": "https://b.example.com", "models": ["b1"]}
    }
}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(doc), 0o600))

	require.NoError(t, store.Patch(map[string]any{
		"current_provider": "beta",
		"default_model":    "b1",
	}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "beta", gjson.GetBytes(data, "current_provider").String())
	assert.Equal(t, "b1", gjson.GetBytes(data, "default_model").String())
	assert.Equal(t, "dark", gjson.GetBytes(data, "theme").String())

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, providerNames(cfg))

	t.Run("corrupt file", func(t *testing.T) {
		store := NewStore(t.TempDir())
		require.NoError(t, os.WriteFile(store.Path(), []byte(`not json`), 0o600))
		err := store.Patch(map[string]any{"default_model": "x"})
		assert.ErrorIs(t, err, ErrConfigCorrupt)
	})
}

func TestDefaultDir(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/ag-test-config")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ag-test-config", dir)

	t.Setenv(EnvConfigDir, "")
	dir, err = DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".config", "ag"), filepath.Join(filepath.Base(filepath.Dir(dir)), filepath.Base(dir)))
}

func TestSchema(t *testing.T) {
	s := Schema()
	require.NotNil(t, s)
	assert.Equal(t, "ag configuration", s.Title)

	providers, ok := s.Properties.Get("providers")
	require.True(t, ok)
	assert.Equal(t, "object", providers.Type)
	require.NotNil(t, providers.AdditionalProperties)

	_, ok = providers.AdditionalProperties.Properties.Get("api_base")
	assert.True(t, ok)
	_, ok = s.Properties.Get("default_model")
	assert.True(t, ok)
}

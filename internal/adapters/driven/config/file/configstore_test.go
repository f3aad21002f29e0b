package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStoreSetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyStoreSiteID, "contoso.sharepoint.com,guid1,guid2"))
	assert.Equal(t, "contoso.sharepoint.com,guid1,guid2", store.GetString(KeyStoreSiteID))

	_, ok := store.Get("store.missing")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("store.missing"))
}

func TestConfigStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyAuthTenantID, "tenant-1"))
	require.NoError(t, store.Set(KeyAuthClientID, "client-1"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", reopened.GetString(KeyAuthTenantID))
	assert.Equal(t, "client-1", reopened.GetString(KeyAuthClientID))
}

func TestConfigStoreWritesNestedTables(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyStoreBaseURL, "https://graph.example.com/v1.0"))
	require.NoError(t, store.Set(KeyWatchDir, "/srv/evidence"))

	raw, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[store]")
	assert.Contains(t, string(raw), "[watch]")
	assert.NotContains(t, string(raw), `"store.base_url"`)
}

func TestConfigStoreFilePermissions(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyAuthClientSecret, "s3cret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStoreMissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "", store.GetString(KeyStoreSiteID))
	assert.False(t, store.GetBool("watch.enabled"))
}

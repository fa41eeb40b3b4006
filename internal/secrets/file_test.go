package secrets

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gauged/internal/core"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()
	ref := CredentialRef("acc_1", core.AuthTypeAPIKey)

	err := store.Put(ctx, ref, "sk-secret")
	require.NoError(t, err)

	value, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", value)

	err = store.Delete(ctx, ref)
	require.NoError(t, err)

	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestFileStore_GetMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Get(context.Background(), "acc_missing.api_key")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestFileStore_DeleteMissingIsNoop(t *testing.T) {
	store := NewFileStore(t.TempDir())
	assert.NoError(t, store.Delete(context.Background(), "acc_missing.api_key"))
}

func TestFileStore_RejectsBadRefs(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	for _, ref := range []string{"", "   ", "../escape", "/abs/path", "."} {
		_, err := store.Get(ctx, ref)
		assert.Error(t, err, "ref %q should be rejected", ref)
	}
}

func TestFileStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	root := t.TempDir()
	store := NewFileStore(root)
	ref := CredentialRef("acc_1", core.AuthTypeSession)

	require.NoError(t, store.Put(context.Background(), ref, "token"))

	info, err := os.Stat(filepath.Join(root, ref))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCredentialRef(t *testing.T) {
	assert.Equal(t, "acc_1.api_key", CredentialRef("acc_1", core.AuthTypeAPIKey))
	assert.Equal(t, "acc_2.manual", CredentialRef("acc_2", core.AuthTypeManual))
}

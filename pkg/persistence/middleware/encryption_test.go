package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"testing"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/persistence/middleware"
	"github.com/aretw0/docket/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func newEncrypted(t *testing.T, cfg middleware.EncryptionConfig) middleware.Middleware {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	underlying := NewMockStore()
	mw := newEncrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	tests.SessionStoreContractTest(t, mw(underlying))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secureStore := newEncrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	ctx := context.Background()
	sess := domain.NewSession("test-session")
	sess.Begin(domain.KindAffidavit)
	sess.Facts.Set(domain.FactFullName, "Jane Doe")
	sess.PendingField = domain.FactAddress

	require.NoError(t, secureStore.Save(ctx, sess.ID, sess))

	stored, err := underlying.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.Facts, domain.FactFullName)
	assert.Contains(t, stored.Facts, "__encrypted__")
	assert.Empty(t, stored.Kind)
	assert.Empty(t, stored.PendingField)
	assert.Equal(t, domain.StateCollecting, stored.State)

	loaded, err := secureStore.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", loaded.Facts[domain.FactFullName])
	assert.Equal(t, domain.KindAffidavit, loaded.Kind)
	assert.Equal(t, domain.FactAddress, loaded.PendingField)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := newEncrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)

	ctx := context.Background()
	sess := domain.NewSession("rotation-session")
	sess.Facts.Set(domain.FactPurpose, "encrypted-with-old-key")
	require.NoError(t, secureStoreOld.Save(ctx, sess.ID, sess))

	secureStoreNew := newEncrypted(t, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := secureStoreNew.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "encrypted-with-old-key", loaded.Facts[domain.FactPurpose])

	loaded.Facts.Set(domain.FactPurpose, "encrypted-with-new-key")
	require.NoError(t, secureStoreNew.Save(ctx, sess.ID, loaded))

	_, err = secureStoreOld.Load(ctx, sess.ID)
	assert.Error(t, err, "old key alone must not decrypt data written with the new key")
}

func TestEncryptionMiddleware_PlainSessionRejected(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", domain.NewSession("plain")))

	secureStore := newEncrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secureStore.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	fromHex, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, fromHex)

	fromB64, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, fromB64)

	_, err = middleware.ParseKey("too-short")
	assert.Error(t, err)
}

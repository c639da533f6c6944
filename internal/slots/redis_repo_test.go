package slots

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	pkgredis "github.com/angelmondragon/narkk-storefront/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	repo, err := NewRedisRepository(pkgredis.NewFromRaw(raw), ttl)
	require.NoError(t, err)
	return repo, mr
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, 0)

	_, err := repo.Load(ctx, "sess-1", CartKey)
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, repo.Save(ctx, "sess-1", CartKey, []byte(`{"items":[]}`)))
	assert.True(t, mr.Exists("narkk:slot:sess-1:narkk-cart"))

	got, err := repo.Load(ctx, "sess-1", CartKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(got))

	require.NoError(t, repo.Save(ctx, "sess-1", CartKey, []byte(`{"items":[{"id":"1"}]}`)))
	got, err = repo.Load(ctx, "sess-1", CartKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"id":"1"}]}`, string(got))

	require.NoError(t, repo.Delete(ctx, "sess-1", CartKey))
	_, err = repo.Load(ctx, "sess-1", CartKey)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRedisRepositoryScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRedisRepo(t, 0)

	require.NoError(t, repo.Save(ctx, "tab-a", LastOrderKey, []byte(`"a"`)))
	_, err := repo.Load(ctx, "tab-b", LastOrderKey)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRedisRepositoryAppliesTTL(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Hour)

	require.NoError(t, repo.Save(ctx, "sess-1", SettingsKey, []byte(`{}`)))
	assert.Equal(t, time.Hour, mr.TTL("narkk:slot:sess-1:wc-config"))

	mr.FastForward(2 * time.Hour)
	_, err := repo.Load(ctx, "sess-1", SettingsKey)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRedisRepositoryLoadSlidesExpiry(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Hour)

	require.NoError(t, repo.Save(ctx, "sess-1", CartKey, []byte(`{"items":[]}`)))
	mr.FastForward(45 * time.Minute)

	_, err := repo.Load(ctx, "sess-1", CartKey)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("narkk:slot:sess-1:narkk-cart"))

	mr.FastForward(45 * time.Minute)
	_, err = repo.Load(ctx, "sess-1", CartKey)
	assert.NoError(t, err, "an active cart should outlive the original expiry")
}

func TestRedisRepositorySurfacesBackendErrors(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, 0)
	mr.SetError("LOADING")

	_, err := repo.Load(ctx, "sess-1", CartKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmpty)
}

func TestNewRedisRepositoryRequiresClient(t *testing.T) {
	_, err := NewRedisRepository(nil, 0)
	assert.Error(t, err)
}

package settings

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/narkk-storefront/internal/slots"
	"github.com/angelmondragon/narkk-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	pkgredis "github.com/angelmondragon/narkk-storefront/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envCreds = config.CommerceConfig{APIURL: "https://env.example/wp-json/wc/v3", ConsumerKey: "ck_env", ConsumerSecret: "cs_env"}

func newTestService(t *testing.T, env config.CommerceConfig) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	repo, err := slots.NewRedisRepository(pkgredis.NewFromRaw(raw), 0)
	require.NoError(t, err)
	svc, err := NewService(repo, env, nil, logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	return svc, mr
}

func validCommerce() Commerce {
	return Commerce{APIURL: "https://shop.example/wp-json/wc/v3", ConsumerKey: "ck_1", ConsumerSecret: "cs_1"}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	svc, mr := newTestService(t, config.CommerceConfig{})

	view, err := svc.Save(ctx, "sess-1", validCommerce())
	require.NoError(t, err)
	assert.True(t, view.Configured)
	assert.Equal(t, SourceSession, view.Source)

	stored, err := mr.Get("narkk:slot:sess-1:wc-config")
	require.NoError(t, err)
	assert.JSONEq(t, `{"apiUrl":"https://shop.example/wp-json/wc/v3","consumerKey":"ck_1","consumerSecret":"cs_1"}`, stored)

	got, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, validCommerce(), got.Saved)
}

func TestSaveRequiresAllFields(t *testing.T) {
	svc, _ := newTestService(t, config.CommerceConfig{})
	in := validCommerce()
	in.ConsumerSecret = "   "

	_, err := svc.Save(context.Background(), "sess-1", in)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Please fill in all fields", typed.Message())
}

func TestSaveRejectsInvalidURL(t *testing.T) {
	svc, _ := newTestService(t, config.CommerceConfig{})
	in := validCommerce()
	in.APIURL = "shop.example"

	_, err := svc.Save(context.Background(), "sess-1", in)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSaveRejectsPrivateEndpoints(t *testing.T) {
	svc, mr := newTestService(t, config.CommerceConfig{})

	for _, apiURL := range []string{
		"http://shop.example/wp-json/wc/v3",
		"https://127.0.0.1:8080/admin",
		"https://192.168.0.10/wp-json/wc/v3",
		"https://169.254.169.254/latest/meta-data",
		"https://localhost/wp-json/wc/v3",
	} {
		in := validCommerce()
		in.APIURL = apiURL
		_, err := svc.Save(context.Background(), "sess-1", in)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, apiURL)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code(), apiURL)
		assert.Equal(t, map[string]string{"apiUrl": "must be a public https URL"}, typed.Details(), apiURL)
	}
	assert.False(t, mr.Exists("narkk:slot:sess-1:wc-config"), "rejected settings must not be stored")
}

func TestSessionCredentialsAreUntrusted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, envCreds)

	creds, err := svc.Credentials(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, creds.Untrusted, "environment credentials come from the operator")

	_, err = svc.Save(ctx, "sess-1", validCommerce())
	require.NoError(t, err)
	creds, err = svc.Credentials(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, creds.Untrusted)
}

func TestAllowPrivateEndpointsForLocalDevelopment(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, config.CommerceConfig{AllowPrivateEndpoints: true})

	in := validCommerce()
	in.APIURL = "http://localhost:8080/wp-json/wc/v3"
	_, err := svc.Save(ctx, "sess-1", in)
	require.NoError(t, err)

	creds, err := svc.Credentials(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, creds.Untrusted)
	assert.Equal(t, in.APIURL, creds.APIURL)
}

func TestCredentialsPrecedence(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(t, config.CommerceConfig{})
	creds, err := svc.Credentials(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, creds.Complete(), "nothing configured")

	svc, _ = newTestService(t, envCreds)
	creds, err = svc.Credentials(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ck_env", creds.ConsumerKey)

	_, err = svc.Save(ctx, "sess-1", validCommerce())
	require.NoError(t, err)
	creds, err = svc.Credentials(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ck_1", creds.ConsumerKey)

	creds, err = svc.Credentials(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, "ck_env", creds.ConsumerKey, "other sessions keep the environment credentials")
}

func TestClearFallsBackToEnvironment(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, envCreds)

	_, err := svc.Save(ctx, "sess-1", validCommerce())
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "sess-1"))

	view, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, SourceEnvironment, view.Source)
	assert.Equal(t, Commerce{}, view.Saved)
}

func TestCorruptSettingsTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	svc, mr := newTestService(t, config.CommerceConfig{})
	require.NoError(t, mr.Set("narkk:slot:sess-1:wc-config", "{broken"))

	view, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, view.Configured)
	assert.Equal(t, SourceNone, view.Source)
}

func TestBackendFailureIsDependencyError(t *testing.T) {
	svc, mr := newTestService(t, config.CommerceConfig{})
	mr.SetError("LOADING")

	_, err := svc.Credentials(context.Background(), "sess-1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

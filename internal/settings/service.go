package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/narkk-storefront/internal/slots"
	"github.com/angelmondragon/narkk-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
	"github.com/angelmondragon/narkk-storefront/pkg/keylock"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/angelmondragon/narkk-storefront/pkg/validation"
	"github.com/angelmondragon/narkk-storefront/pkg/woocommerce"
)

// Where the credentials in effect come from.
const (
	SourceSession     = "session"
	SourceEnvironment = "environment"
	SourceNone        = "none"
)

const (
	NoticeSaved   = "WooCommerce configuration saved"
	NoticeCleared = "WooCommerce configuration cleared"

	msgMissingFields   = "Please fill in all fields"
	msgPrivateEndpoint = "API URL must be a public https address"
)

// Commerce is the persisted shape of the wc-config slot.
type Commerce struct {
	APIURL         string `json:"apiUrl" validate:"required,http_url"`
	ConsumerKey    string `json:"consumerKey" validate:"required"`
	ConsumerSecret string `json:"consumerSecret" validate:"required"`
}

func (c Commerce) credentials() woocommerce.Credentials {
	return woocommerce.Credentials{APIURL: c.APIURL, ConsumerKey: c.ConsumerKey, ConsumerSecret: c.ConsumerSecret}
}

func (c Commerce) trimmed() Commerce {
	return Commerce{
		APIURL:         strings.TrimSpace(c.APIURL),
		ConsumerKey:    strings.TrimSpace(c.ConsumerKey),
		ConsumerSecret: strings.TrimSpace(c.ConsumerSecret),
	}
}

// View describes the settings a session sees. Saved is empty when the session
// has not stored its own credentials.
type View struct {
	Saved      Commerce
	Configured bool
	Source     string
}

type Service interface {
	Get(ctx context.Context, session string) (View, error)
	Save(ctx context.Context, session string, in Commerce) (View, error)
	Clear(ctx context.Context, session string) error
	Credentials(ctx context.Context, session string) (woocommerce.Credentials, error)
}

type service struct {
	repo  slots.Repository
	env   config.CommerceConfig
	locks *keylock.Map
	logg  *logger.Logger
}

// NewService builds the settings service. env supplies store-wide credentials
// used when a session has none of its own.
func NewService(repo slots.Repository, env config.CommerceConfig, locks *keylock.Map, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("slot repository required")
	}
	if locks == nil {
		locks = keylock.New()
	}
	return &service{repo: repo, env: env, locks: locks, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, session string) (View, error) {
	saved, ok, err := s.load(ctx, session)
	if err != nil {
		return View{}, err
	}
	return s.view(saved, ok), nil
}

func (s *service) Save(ctx context.Context, session string, in Commerce) (View, error) {
	if session == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}
	in = in.trimmed()
	if err := validation.Struct(in, msgMissingFields); err != nil {
		return View{}, err
	}
	if !s.env.AllowPrivateEndpoints {
		if err := woocommerce.CheckPublicEndpoint(in.APIURL); err != nil {
			return View{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgPrivateEndpoint).
				WithDetails(map[string]string{"apiUrl": "must be a public https URL"})
		}
	}

	raw, err := json.Marshal(in)
	if err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode settings")
	}

	unlock := s.locks.Lock(session)
	defer unlock()
	if err := s.repo.Save(ctx, session, slots.SettingsKey, raw); err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to save configuration")
	}
	return s.view(in, true), nil
}

func (s *service) Clear(ctx context.Context, session string) error {
	if session == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}
	unlock := s.locks.Lock(session)
	defer unlock()
	if err := s.repo.Delete(ctx, session, slots.SettingsKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to clear configuration")
	}
	return nil
}

// Credentials prefers the session's saved settings, then the environment.
// The result is incomplete when neither is configured.
func (s *service) Credentials(ctx context.Context, session string) (woocommerce.Credentials, error) {
	saved, ok, err := s.load(ctx, session)
	if err != nil {
		return woocommerce.Credentials{}, err
	}
	return s.view(saved, ok).credentials(s.env), nil
}

func (v View) credentials(env config.CommerceConfig) woocommerce.Credentials {
	switch v.Source {
	case SourceSession:
		creds := v.Saved.credentials()
		creds.Untrusted = !env.AllowPrivateEndpoints
		return creds
	case SourceEnvironment:
		return woocommerce.Credentials{APIURL: env.APIURL, ConsumerKey: env.ConsumerKey, ConsumerSecret: env.ConsumerSecret}
	}
	return woocommerce.Credentials{}
}

func (s *service) view(saved Commerce, ok bool) View {
	switch {
	case ok && saved.credentials().Complete():
		return View{Saved: saved, Configured: true, Source: SourceSession}
	case s.env.Configured():
		return View{Saved: saved, Configured: true, Source: SourceEnvironment}
	default:
		return View{Saved: saved, Source: SourceNone}
	}
}

// load reads the session's slot. Unreadable data is logged and treated as absent.
func (s *service) load(ctx context.Context, session string) (Commerce, bool, error) {
	if session == "" {
		return Commerce{}, false, nil
	}
	raw, err := s.repo.Load(ctx, session, slots.SettingsKey)
	if errors.Is(err, slots.ErrEmpty) {
		return Commerce{}, false, nil
	}
	if err != nil {
		return Commerce{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load configuration")
	}
	var saved Commerce
	if err := json.Unmarshal(raw, &saved); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "slot", slots.SettingsKey), "discarding unreadable commerce settings: "+err.Error())
		return Commerce{}, false, nil
	}
	return saved, true, nil
}

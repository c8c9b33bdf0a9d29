package mapikit

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/provider"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// Default logon flags.
const (
	DefaultLogonFlags     = types.MAPI_EXTENDED | types.MAPI_NEW_SESSION | types.MAPI_EXPLICIT_PROFILE
	DefaultTempLogonFlags = types.MAPI_EXTENDED | types.MAPI_NO_MAIL
)

// Option configures a Client.
type Option func(*env)

// WithRegistry sets the registry used to wrap provider resources.
func WithRegistry(r *Registry) Option {
	return func(e *env) { e.registry = r }
}

// WithPrefetch sets the default scan batch size of tables.
func WithPrefetch(n int) Option {
	return func(e *env) {
		if n > 0 {
			e.prefetch = n
		}
	}
}

// WithErrorFlags sets the flags passed to GetLastError.
func WithErrorFlags(flags uint32) Option {
	return func(e *env) { e.errFlags = flags }
}

// WithBusyRetry sets how often a row fetch reporting MAPI_E_BUSY is retried
// and the initial wait between attempts. The wait doubles on each retry.
func WithBusyRetry(retries int, wait time.Duration) Option {
	return func(e *env) {
		e.busyRetries = retries
		e.busyWait = wait
	}
}

// WithConfig applies the tuning fields of cfg.
func WithConfig(cfg types.Config) Option {
	return func(e *env) {
		cfg = cfg.WithDefaults()
		e.prefetch = cfg.Prefetch
		if cfg.Unicode {
			e.errFlags |= types.MAPI_UNICODE
		}
	}
}

// Client is the entry point for a provider.
type Client struct {
	provider provider.Provider
	env      *env
}

// New returns a client for p.
func New(p provider.Provider, opts ...Option) *Client {
	e := defaultEnv()
	for _, opt := range opts {
		opt(e)
	}
	return &Client{provider: p, env: e}
}

// Initialize initializes the provider and returns the function that
// uninitializes it.
//
//	uninit, err := c.Initialize()
//	if err != nil {
//		return err
//	}
//	defer uninit()
func (c *Client) Initialize() (func() error, error) {
	if err := c.provider.Initialize(); err != nil {
		return nil, Annotate(err)
	}
	return func() error {
		return Annotate(c.provider.Uninitialize())
	}, nil
}

// Logon logs on to profile.
func (c *Client) Logon(profile, password string, flags uint32) (*Session, error) {
	raw, err := c.provider.LogonEx(profile, password, flags)
	if err != nil {
		return nil, Annotate(err)
	}
	Logger().Debug("logged on", zap.String("profile", profile))
	return wrapAs[*Session](c.env, raw)
}

// AdminProfiles opens the profile administration object.
func (c *Client) AdminProfiles(flags uint32) (*ProfAdmin, error) {
	raw, err := c.provider.AdminProfiles(flags)
	if err != nil {
		return nil, Annotate(err)
	}
	return wrapAs[*ProfAdmin](c.env, raw)
}

// Wrap wraps raw in the wrapper registered for its kind.
func (c *Client) Wrap(raw provider.Unknown) (Object, error) {
	return c.env.registry.wrap(c.env, raw)
}

// WrapAs wraps raw and returns it as T. It fails with a
// *types.TypeMismatchError when the wrapper registered for raw's kind is
// not a T.
func WrapAs[T Object](c *Client, raw provider.Unknown) (T, error) {
	return wrapAs[T](c.env, raw)
}

// TempProfileName returns the name LogonTempProfile gives its profile.
func TempProfileName(now time.Time, pid int) string {
	return fmt.Sprintf("MAPIKit.TempProfile.%.3f[%d]", float64(now.UnixMilli())/1000, pid)
}

// LogonTempProfile creates a throwaway profile, logs on to it and deletes
// the profile again. The session stays usable after the profile is gone.
func (c *Client) LogonTempProfile(flags uint32) (*Session, error) {
	admin, err := c.AdminProfiles(0)
	if err != nil {
		return nil, err
	}
	defer admin.Release()

	name := TempProfileName(time.Now().UTC(), os.Getpid())
	if err := admin.Create(name, "", 0); err != nil {
		return nil, err
	}
	sess, err := c.Logon(name, "", flags)
	if derr := admin.Delete(name, 0); derr != nil {
		if sess != nil {
			derr = errors.Join(derr, sess.Release())
		}
		return nil, errors.Join(err, derr)
	}
	return sess, err
}

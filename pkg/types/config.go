package types

import "errors"

// Config holds provider selection and tuning parameters.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// InlineLimit is the largest value in bytes a provider transfers in-line.
	// Larger binary and string values must go through a property stream.
	InlineLimit int `json:"inline_limit" yaml:"inline_limit"`

	// Prefetch is the number of rows a full table scan requests per fetch.
	Prefetch int `json:"prefetch" yaml:"prefetch"`

	// Unicode selects the character width of extended error text. A provider
	// rejects GetLastError requests of the other width with
	// MAPI_E_BAD_CHARWIDTH.
	Unicode bool `json:"unicode" yaml:"unicode"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied by providers when the corresponding field is zero.
const (
	DefaultInlineLimit = 32 * 1024
	DefaultPrefetch    = 1000
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrInlineLimitInvalid = errors.New("inline limit must not be negative")
	ErrPrefetchInvalid    = errors.New("prefetch must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.InlineLimit < 0 {
		return ErrInlineLimitInvalid
	}
	if c.Prefetch < 0 {
		return ErrPrefetchInvalid
	}
	return nil
}

// WithDefaults returns c with zero tuning fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.InlineLimit == 0 {
		c.InlineLimit = DefaultInlineLimit
	}
	if c.Prefetch == 0 {
		c.Prefetch = DefaultPrefetch
	}
	return c
}

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/mapikit/pkg/mapikit"
	"github.com/mesh-intelligence/mapikit/pkg/sqlite"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// openClient initializes a client over the SQLite provider. The returned
// function uninitializes it.
func (a *app) openClient() (*mapikit.Client, func(), error) {
	cfg, err := a.providerConfig()
	if err != nil {
		return nil, nil, err
	}
	p := sqlite.NewProvider(cfg, a.log.Named("sqlite"))
	c := mapikit.New(p, mapikit.WithConfig(cfg))
	uninit, err := c.Initialize()
	if err != nil {
		return nil, nil, fmt.Errorf("initialize %s: %w", cfg.DataDir, err)
	}
	a.log.Debug("provider initialized", zap.String("data_dir", cfg.DataDir))
	return c, func() {
		if err := uninit(); err != nil {
			a.log.Warn("uninitialize failed", zap.Error(err))
		}
	}, nil
}

// withSession runs fn with a session on the configured profile. An empty
// profile logs on to the default profile.
func (a *app) withSession(fn func(c *mapikit.Client, s *mapikit.Session) error) error {
	c, done, err := a.openClient()
	if err != nil {
		return err
	}
	defer done()

	profile := a.v.GetString(cfgKeyProfile)
	flags := mapikit.DefaultLogonFlags
	if profile == "" {
		flags &^= types.MAPI_EXPLICIT_PROFILE
	}
	sess, err := c.Logon(profile, "", flags)
	if err != nil {
		return fmt.Errorf("logon: %w", err)
	}
	return mapikit.Use(sess, func(s *mapikit.Session) error { return fn(c, s) })
}

// withRoot runs fn with the root folder of the default store.
func (a *app) withRoot(fn func(root *mapikit.Folder) error) error {
	return a.withSession(func(_ *mapikit.Client, s *mapikit.Session) error {
		ms, err := s.OpenDefaultStore(0)
		if err != nil {
			return err
		}
		defer ms.Release()
		root, err := ms.RootFolder(types.MAPI_BEST_ACCESS)
		if err != nil {
			return err
		}
		return mapikit.Use(root, fn)
	})
}

// propBag is the property access shared by every object the CLI edits.
type propBag interface {
	mapikit.Object
	Get(tag types.PropTag) (types.PropValue, error)
	Set(tag types.PropTag, value any) error
	Delete(tag types.PropTag) error
}

// withTarget runs fn on the entry named by entryHex in the default store,
// or on the store's root folder when entryHex is empty.
func (a *app) withTarget(entryHex string, fn func(obj propBag) error) error {
	if entryHex == "" {
		return a.withRoot(func(root *mapikit.Folder) error { return fn(root) })
	}
	id, err := hex.DecodeString(entryHex)
	if err != nil {
		return userError(fmt.Errorf("entry id: %w", err))
	}
	return a.withSession(func(_ *mapikit.Client, s *mapikit.Session) error {
		ms, err := s.OpenDefaultStore(0)
		if err != nil {
			return err
		}
		defer ms.Release()
		obj, err := ms.OpenEntry(id, types.MAPI_BEST_ACCESS)
		if err != nil {
			return err
		}
		bag, ok := obj.(propBag)
		if !ok {
			_ = obj.Release()
			return userError(fmt.Errorf("entry %s has no properties", entryHex))
		}
		return mapikit.Use(bag, fn)
	})
}

// parseTag resolves a symbolic tag name or a numeric tag such as
// 0x0037001F.
func parseTag(s string) (types.PropTag, error) {
	if tag, ok := types.LookupPropTag(strings.ToUpper(s)); ok {
		return tag, nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, userError(fmt.Errorf("unknown property tag %q", s))
	}
	return types.PropTag(n), nil
}

func parseTags(names []string) ([]types.PropTag, error) {
	tags := make([]types.PropTag, 0, len(names))
	for _, name := range names {
		tag, err := parseTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// parseValue converts command-line text to a value of the tag's class.
// Binary values are hex and times RFC 3339.
func parseValue(tag types.PropTag, s string) (any, error) {
	var (
		v   any
		err error
	)
	switch tag.Type().Class() {
	case types.ClassBinary:
		v, err = hex.DecodeString(s)
	case types.ClassString8, types.ClassUnicode:
		v = s
	case types.ClassInteger:
		v, err = strconv.ParseInt(s, 0, 64)
	case types.ClassBoolean:
		v, err = strconv.ParseBool(s)
	case types.ClassTime:
		v, err = time.Parse(time.RFC3339, s)
	case types.ClassFloat:
		v, err = strconv.ParseFloat(s, 64)
	default:
		return nil, userError(fmt.Errorf("%s: cannot parse %s values", types.PropTagName(tag), tag.Type()))
	}
	if err != nil {
		return nil, userError(fmt.Errorf("%s: %w", types.PropTagName(tag), err))
	}
	return v, nil
}

// parseAssignment splits TAG=VALUE and parses both sides.
func parseAssignment(s string) (types.PropTag, any, error) {
	name, text, ok := strings.Cut(s, "=")
	if !ok {
		return 0, nil, userError(fmt.Errorf("invalid %q (expected TAG=VALUE)", s))
	}
	tag, err := parseTag(name)
	if err != nil {
		return 0, nil, err
	}
	v, err := parseValue(tag, text)
	if err != nil {
		return 0, nil, err
	}
	return tag, v, nil
}

// jsonValue renders v for JSON output.
func jsonValue(v types.PropValue) any {
	if code, ok := v.Code(); ok {
		return code.String()
	}
	switch x := v.Value.(type) {
	case []byte:
		return hex.EncodeToString(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	}
	return v.Value
}

func rowJSON(row types.Row) map[string]any {
	m := make(map[string]any, len(row))
	for _, v := range row {
		m[types.PropTagName(v.Tag)] = jsonValue(v)
	}
	return m
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printValue(v types.PropValue) error {
	if a.flagJSON {
		return a.printJSON(map[string]any{types.PropTagName(v.Tag): jsonValue(v)})
	}
	_, err := fmt.Fprintln(a.out, v)
	return err
}

// printRows writes rows as a JSON array or one line per row.
func (a *app) printRows(rows []types.Row) error {
	if a.flagJSON {
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, rowJSON(row))
		}
		return a.printJSON(out)
	}
	for _, row := range rows {
		fields := make([]string, 0, len(row))
		for _, v := range row {
			fields = append(fields, v.String())
		}
		if _, err := fmt.Fprintln(a.out, strings.Join(fields, "  ")); err != nil {
			return err
		}
	}
	return nil
}

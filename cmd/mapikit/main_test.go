package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// cli runs the command in-process against temporary directories.
type cli struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, configDir: t.TempDir(), dataDir: t.TempDir()}
}

func (c *cli) run(args ...string) (string, string, int) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--config-dir", c.configDir, "--data-dir", c.dataDir}, args...)
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// ok runs args and fails the test unless they succeed.
func (c *cli) ok(args ...string) string {
	c.t.Helper()
	out, errOut, code := c.run(args...)
	require.Equal(c.t, exitSuccess, code, "mapikit %s: %s", strings.Join(args, " "), errOut)
	return out
}

func (c *cli) rows(args ...string) []map[string]any {
	c.t.Helper()
	var rows []map[string]any
	require.NoError(c.t, json.Unmarshal([]byte(c.ok(append(args, "--json")...)), &rows))
	return rows
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, &stdout, &stderr)
	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, "mapikit "+Version+"\n", stdout.String())
}

func TestInit(t *testing.T) {
	c := newCLI(t)
	out := c.ok("init")
	assert.Contains(t, out, "mapikit initialized")
	assert.Contains(t, out, "profile: mapikit")
	assert.FileExists(t, filepath.Join(c.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(c.dataDir, "mapikit.db"))

	c.ok("init")
	assert.Equal(t, "* mapikit\n", c.ok("profile", "list"))
	assert.Len(t, c.rows("store", "list"), 1, "a second init adds nothing")
}

func TestSetGetDelete(t *testing.T) {
	c := newCLI(t)
	c.ok("init")

	c.ok("set", "PR_SUBJECT_W", "hello")
	assert.Equal(t, "PR_SUBJECT_W=\"hello\"\n", c.ok("get", "pr_subject_w"))

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(c.ok("get", "0x0037001F", "--json")), &got))
	assert.Equal(t, map[string]any{"PR_SUBJECT_W": "hello"}, got)

	c.ok("delete", "PR_SUBJECT_W")
	_, errOut, code := c.run("get", "PR_SUBJECT_W")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "PR_SUBJECT_W")
}

func TestMessages(t *testing.T) {
	c := newCLI(t)
	c.ok("init")

	alpha := strings.TrimSpace(c.ok("message", "create", "PR_SUBJECT_W=alpha", "PR_IMPORTANCE=2"))
	beta := strings.TrimSpace(c.ok("message", "create", "PR_SUBJECT_W=Beta report"))
	require.NotEqual(t, alpha, beta)

	rows := c.rows("rows")
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0]["PR_SUBJECT_W"])
	assert.Equal(t, alpha, rows[0]["PR_ENTRYID"])

	assert.Equal(t, "PR_IMPORTANCE=2\n", c.ok("get", "--entry", alpha, "PR_IMPORTANCE"))

	found := c.rows("find", "--substr", "PR_SUBJECT_W=REPORT", "--ignore-case")
	require.Len(t, found, 1)
	assert.Equal(t, "Beta report", found[0]["PR_SUBJECT_W"])

	found = c.rows("find", "--exists", "PR_SUBJECT_W", "--backward", "--columns", "PR_SUBJECT_W")
	require.Len(t, found, 2)
	assert.Equal(t, "Beta report", found[0]["PR_SUBJECT_W"])
	assert.Equal(t, "alpha", found[1]["PR_SUBJECT_W"])

	out := c.ok("find", "--eq", "PR_IMPORTANCE=2")
	assert.Contains(t, out, "RES_PROPERTY")
	assert.Contains(t, out, "alpha")

	c.ok("message", "delete", alpha)
	assert.Len(t, c.rows("rows"), 1)
	_, _, code := c.run("message", "delete", alpha)
	assert.Equal(t, exitUserError, code)
}

func TestFolders(t *testing.T) {
	c := newCLI(t)
	c.ok("init")

	inbox := strings.TrimSpace(c.ok("folder", "create", "Inbox"))
	_, _, code := c.run("folder", "create", "Inbox")
	assert.Equal(t, exitUserError, code)
	assert.Equal(t, inbox, strings.TrimSpace(c.ok("folder", "create", "Inbox", "--open-existing")))

	hier := c.rows("rows", "--folder", "hier")
	require.Len(t, hier, 1)
	assert.Equal(t, "Inbox", hier[0]["PR_DISPLAY_NAME_W"])

	c.ok("message", "create", "--entry", inbox, "PR_SUBJECT_W=filed")
	assert.Len(t, c.rows("rows", "--entry", inbox), 1)
	assert.Empty(t, c.rows("rows"))

	_, _, code = c.run("rows", "--folder", "sideways")
	assert.Equal(t, exitUserError, code)
}

func TestProfiles(t *testing.T) {
	c := newCLI(t)
	c.ok("init")

	c.ok("profile", "create", "work")
	c.ok("profile", "default", "work")
	assert.Equal(t, "work\n", c.ok("profile", "default"))

	var profiles []profileEntry
	require.NoError(t, json.Unmarshal([]byte(c.ok("profile", "list", "--json")), &profiles))
	assert.Equal(t, []profileEntry{{Name: "mapikit"}, {Name: "work", Default: true}}, profiles)

	// The new default profile has no store yet.
	_, _, code := c.run("get", "PR_SUBJECT_W")
	assert.Equal(t, exitUserError, code)

	c.ok("store", "create", "Work mail", "--default")
	stores := c.rows("store", "list")
	require.Len(t, stores, 1)
	assert.Equal(t, "Work mail", stores[0]["PR_DISPLAY_NAME_W"])
	assert.Equal(t, true, stores[0]["PR_DEFAULT_STORE"])

	c.ok("profile", "delete", "mapikit")
	_, _, code = c.run("profile", "delete", "mapikit")
	assert.Equal(t, exitUserError, code)
}

func TestUserErrors(t *testing.T) {
	c := newCLI(t)

	_, _, code := c.run("get", "PR_SUBJECT_W")
	assert.Equal(t, exitUserError, code, "no default profile before init")

	c.ok("init")
	tests := []struct {
		name string
		args []string
	}{
		{"unknown tag", []string{"get", "PR_NO_SUCH_TAG"}},
		{"bad integer", []string{"set", "PR_IMPORTANCE", "high"}},
		{"bad entry id", []string{"get", "--entry", "zz", "PR_SUBJECT_W"}},
		{"unknown flag", []string{"rows", "--sideways"}},
		{"missing argument", []string{"set", "PR_SUBJECT_W"}},
		{"empty find", []string{"find"}},
		{"bad assignment", []string{"find", "--eq", "PR_IMPORTANCE"}},
		{"computed property", []string{"set", "PR_ENTRYID", "00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := c.run(tt.args...)
			assert.Equal(t, exitUserError, code)
			assert.True(t, strings.HasPrefix(errOut, "mapikit: "), errOut)
		})
	}
}

func TestBadConfig(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.configDir, "config.yaml"), []byte("backend: bolt\n"), 0o644))
	_, errOut, code := c.run("init")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, types.ErrBackendUnknown.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"user error", userError(errors.New("bad")), exitUserError},
		{"missing property", fmt.Errorf("get: %w", &types.KeyError{Tag: types.PR_SUBJECT_W}), exitUserError},
		{"no default", types.ErrNoDefault, exitUserError},
		{"collision", types.NewError("CreateFolder", types.MAPI_E_COLLISION), exitUserError},
		{"provider failure", types.NewError("OpenEntry", types.MAPI_E_CALL_FAILED), exitSysError},
		{"plain error", errors.New("disk full"), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/questlog/internal/credential"
	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/quest"
)

type harness struct {
	t    *testing.T
	dir  string
	ring keyring.Keyring
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("QUESTLOG_PASSPHRASE", "")
	dir := t.TempDir()

	cfg := model.DefaultAppConfig()
	cfg.Database.Path = filepath.Join(dir, "journal.db")
	cfg.Log.Path = filepath.Join(dir, "questlog.log")
	require.NoError(t, model.SaveConfig(filepath.Join(dir, "config.yaml"), cfg))

	return &harness{t: t, dir: dir, ring: keyring.NewArrayKeyring(nil)}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	root := newRootCmd(func(string) (*credential.Vault, error) {
		return credential.New(h.ring), nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(h.dir, "config.yaml")}, args...))
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestCLI_AddListShow(t *testing.T) {
	h := newHarness(t)

	h.mustRun("init")
	parent := h.mustRun("add", "Slay the dragon", "--giver", "King Aldric", "--status", "active")
	child := h.mustRun("add", "Forge the sword", "--parent", parent)

	list := h.mustRun("list")
	assert.Contains(t, list, "Slay the dragon")
	assert.Contains(t, list, "Forge the sword")

	active := h.mustRun("list", "--status", "active")
	assert.Contains(t, active, "Slay the dragon")
	assert.NotContains(t, active, "Forge the sword")

	show := h.mustRun("show", child)
	assert.Contains(t, show, "Forge the sword [inactive]")
	assert.Contains(t, show, "Parent: Slay the dragon")

	show = h.mustRun("show", parent)
	assert.Contains(t, show, "Giver: King Aldric")
	assert.Contains(t, show, child)
}

func TestCLI_DeleteRelinksSubquests(t *testing.T) {
	h := newHarness(t)

	p := h.mustRun("add", "P")
	a := h.mustRun("add", "A", "--parent", p)
	b := h.mustRun("add", "B", "--parent", a)

	out := h.mustRun("delete", a)
	assert.Contains(t, out, "deleted "+a)
	assert.Contains(t, out, "updated "+b)
	assert.Contains(t, out, "updated "+p)

	assert.Contains(t, h.mustRun("show", b), "Parent: P ("+p+")")
	_, err := h.run("show", a)
	assert.Error(t, err)
}

func TestCLI_TaskCycle(t *testing.T) {
	h := newHarness(t)
	id := h.mustRun("add", "Fetch water")

	assert.Equal(t, "0", h.mustRun("task", "add", id, "Find the well"))
	assert.Equal(t, "checked", h.mustRun("task", "toggle", id, "0"))
	assert.Equal(t, "failed", h.mustRun("task", "toggle", id, "0"))
	assert.Equal(t, "unchecked", h.mustRun("task", "toggle", id, "0"))

	_, err := h.run("task", "toggle", id, "3")
	assert.Error(t, err)

	h.mustRun("task", "remove", id, "0")
	assert.NotContains(t, h.mustRun("show", id), "Find the well")
}

func TestCLI_RewardRequiresName(t *testing.T) {
	h := newHarness(t)
	id := h.mustRun("add", "Bounty")

	_, err := h.run("reward", "add", id)
	assert.ErrorIs(t, err, model.ErrInvalidReward)

	assert.Equal(t, "0", h.mustRun("reward", "add", id, "--name", "Gold"))
	assert.Contains(t, h.mustRun("show", id), "Gold (item)")
}

func TestCLI_PlayerCannotCreate(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--role", "player", "--user", "p1", "add", "Sneaky")
	assert.ErrorIs(t, err, quest.ErrForbidden)
}

func TestCLI_PassphraseGatesGameMaster(t *testing.T) {
	h := newHarness(t)
	h.mustRun("passphrase", "set", "sesame")

	_, err := h.run("list")
	assert.ErrorIs(t, err, credential.ErrPassphrase)

	h.mustRun("--passphrase", "sesame", "list")
	h.mustRun("--role", "player", "--user", "p1", "list")

	_, err = h.run("--role", "player", "--user", "p1", "passphrase", "clear")
	assert.ErrorIs(t, err, quest.ErrForbidden)

	h.mustRun("--passphrase", "sesame", "passphrase", "clear")
	h.mustRun("list")
}

func TestCLI_ExportImport(t *testing.T) {
	src := newHarness(t)
	parent := src.mustRun("add", "Main")
	src.mustRun("add", "Side", "--parent", parent)
	archive := filepath.Join(src.dir, "quests.yaml")
	assert.Equal(t, "exported 2 quests", src.mustRun("export", archive))

	dst := newHarness(t)
	assert.Equal(t, "imported 2 quests", dst.mustRun("import", archive))
	assert.Contains(t, dst.mustRun("show", parent), "Side")
}

func TestCLI_Settings(t *testing.T) {
	h := newHarness(t)
	id := h.mustRun("add", "Pinned")

	h.mustRun("primary", id)
	assert.Equal(t, id, h.mustRun("primary"))
	assert.Contains(t, h.mustRun("list"), "* Pinned")
	h.mustRun("primary", "--clear")
	assert.Empty(t, h.mustRun("primary"))

	h.mustRun("set", "trusted-edit", "on")
	_, err := h.run("set", "trusted-edit", "maybe")
	assert.Error(t, err)
	_, err = h.run("--role", "player", "--user", "p1", "set", "resizable", "on")
	assert.ErrorIs(t, err, quest.ErrForbidden)
}

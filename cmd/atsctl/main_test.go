package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/dashboard/datasource/fixture"
	"github.com/Abraxas-365/talentdesk/dashboard/session"
	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/prefstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes one atsctl invocation against the fixture backend with its
// config and preferences under dir
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ATS_API_BASE_URL", "")
	t.Setenv("ATSCTL_DATA_SOURCE", "")

	c := &cli{}
	defer c.close()

	var out bytes.Buffer
	root := newRootCmd(c)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "atsctl.yaml"), "--source", "fixture"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "me")
	assert.True(t, errx.IsCode(err, session.CodeNotLoggedIn))

	out, err := run(t, dir, "login", "-u", fixture.AdminUsername, "-p", fixture.AdminPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as admin")

	prefs, err := prefstore.OpenFileStore(filepath.Join(dir, "prefs.json"))
	require.NoError(t, err)
	token, ok := prefs.Get(prefstore.KeyAuthToken)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	out, err = run(t, dir, "me")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@talentdesk.local")

	out, err = run(t, dir, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = run(t, dir, "me")
	assert.True(t, errx.IsCode(err, session.CodeNotLoggedIn))
}

func TestListCommands(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "login", "-u", fixture.RecruiterUsername, "-p", fixture.RecruiterPassword)
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"candidates", []string{"candidates", "list"}, []string{"Ana Torres", "Dana Novak", "4 total"}},
		{"candidates by status", []string{"candidates", "list", "--status", "offered"}, []string{"Chen Wei", "1 total"}},
		{"applications", []string{"applications", "list"}, []string{"Backend Engineer", "Cloud Architect", "3 total"}},
		{"clients", []string{"clients", "list", "--invitation", "invited"}, []string{"Globex", "1 total"}},
		{"stats", []string{"stats"}, []string{"Candidates", "INTERVIEWING", "Resume jobs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, dir, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestInvalidStatusIsRejectedLocally(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "candidates", "list", "--status", "archived")
	require.Error(t, err)
	assert.Contains(t, describe(err), "status")
}

func TestUnknownSource(t *testing.T) {
	dir := t.TempDir()
	c := &cli{}
	defer c.close()

	root := newRootCmd(c)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(dir, "atsctl.yaml"), "--source", "carrier-pigeon", "theme"})
	err := root.ExecuteContext(context.Background())
	assert.True(t, errx.IsCode(err, datasource.CodeUnknownSource))
}

func TestTheme(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "theme")
	require.NoError(t, err)
	assert.Equal(t, "system\n", out)

	_, err = run(t, dir, "theme", "dark")
	require.NoError(t, err)

	out, err = run(t, dir, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	_, err = run(t, dir, "theme", "sepia")
	assert.Error(t, err)
}

func TestConfigFileSelectsFixture(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "atsctl.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("data_source: fixture\n"), 0o600))
	t.Setenv("ATS_API_BASE_URL", "")
	t.Setenv("ATSCTL_DATA_SOURCE", "")

	c := &cli{}
	defer c.close()
	var out bytes.Buffer
	root := newRootCmd(c)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", cfg, "login", "-u", fixture.AdminUsername, "-p", fixture.AdminPassword})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.NotNil(t, c.app.backend)
}

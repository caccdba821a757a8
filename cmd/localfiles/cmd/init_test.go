package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/localfiles/configs"
	"github.com/Aman-CERP/localfiles/internal/config"
)

func TestInitCmd_WritesLoadableProjectConfig(t *testing.T) {
	// Given: an empty workspace
	dir := setupWorkspace(t)

	// When: running init
	stdout, _, err := execute(t, "init")

	// Then: the template is written and loads cleanly
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created")
	data, err := os.ReadFile(filepath.Join(dir, config.ProjectConfigName))
	require.NoError(t, err)
	assert.Equal(t, configs.ProjectConfigTemplate, string(data))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, cfg.Index.Paths)
}

func TestInitCmd_KeepsExistingWithoutForce(t *testing.T) {
	// Given: an existing project config
	dir := setupWorkspace(t)
	path := writeFile(t, filepath.Join(dir, config.ProjectConfigName), "version: 1\n")

	// When: running init without --force
	stdout, _, err := execute(t, "init")

	// Then: the file is untouched
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))
}

func TestInitCmd_ForceBacksUpExisting(t *testing.T) {
	// Given: an existing project config
	dir := setupWorkspace(t)
	path := writeFile(t, filepath.Join(dir, config.ProjectConfigName), "version: 1\n")

	// When: running init --force
	_, _, err := execute(t, "init", "--force")

	// Then: the template replaces it and a backup is kept
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.ProjectConfigTemplate, string(data))

	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestInitCmd_UserConfig(t *testing.T) {
	// Given: an isolated XDG config home
	setupWorkspace(t)

	// When: running init --user
	_, _, err := execute(t, "init", "--user")

	// Then: the user template lands at the user config path
	require.NoError(t, err)
	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))
}

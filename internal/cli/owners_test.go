package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnersAddAndList(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := executeCommand(t, "--config", cfg, "owners", "add",
		"--name", "Main St LLC", "--webhook", "https://hooks.example/main")
	require.NoError(t, err)
	assert.Contains(t, out, "Added owner 1: Main St LLC")

	out, err = executeCommand(t, "--config", cfg, "owners", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Main St LLC")
	assert.Contains(t, out, "webhook set")
}

func TestOwnersList_Empty(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := executeCommand(t, "--config", cfg, "owners", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No owners configured.")
}

func TestOwnersAssign(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, "--config", cfg, "owners", "add", "--name", "A")
	require.NoError(t, err)

	out, err := executeCommand(t, "--config", cfg, "owners", "assign", "1",
		"10 Main St, Brooklyn, NY 11201")
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned 10 MAIN ST, BROOKLYN, NY 11201 for owner 1")

	out, err = executeCommand(t, "--config", cfg, "owners", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "- 10 MAIN ST, BROOKLYN, NY 11201")

	out, err = executeCommand(t, "--config", cfg, "owners", "unassign", "1",
		"10 main st, brooklyn, ny 11201")
	require.NoError(t, err)
	assert.Contains(t, out, "Unassigned")
}

func TestOwnersAssign_UnknownOwner(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, "--config", cfg, "owners", "assign", "42",
		"10 Main St, Brooklyn, NY 11201")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOwnersAssign_BadID(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, "--config", cfg, "owners", "assign", "first",
		"10 Main St, Brooklyn, NY 11201")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOwnersUpdate(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, "--config", cfg, "owners", "add", "--name", "A")
	require.NoError(t, err)

	out, err := executeCommand(t, "--config", cfg, "owners", "update", "1",
		"--webhook", "https://hooks.example/new")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated owner 1")

	out, err = executeCommand(t, "--config", cfg, "owners", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "webhook set")
}

func TestOwnersUpdate_UnknownOwner(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, "--config", cfg, "owners", "update", "9",
		"--webhook", "https://hooks.example/new")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOwnersRemove(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, "--config", cfg, "owners", "add", "--name", "A")
	require.NoError(t, err)

	out, err := executeCommand(t, "--config", cfg, "owners", "remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed owner 1")

	out, err = executeCommand(t, "--config", cfg, "owners", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No owners configured.")
}

func TestOwnersList_JSON(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := executeCommand(t, "--config", cfg, "owners", "add", "--name", "A")
	require.NoError(t, err)

	out, err := executeCommand(t, "--config", cfg, "--format", "json", "owners", "list")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCommands_MissingConfig(t *testing.T) {
	_, err := executeCommand(t, "--config", "/nonexistent/config.yaml", "owners", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

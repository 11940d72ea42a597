package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spend/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginWithFlags(t *testing.T) {
	env := newTestEnv(t, "file")

	out, err := env.run(t, "", "login", "--email", aliceEmail, "--password", alicePassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice (alice@example.com)")

	info, err := os.Stat(filepath.Join(env.dir, "session.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, aliceEmail)
}

func TestLoginPrompts(t *testing.T) {
	env := newTestEnv(t, "file")

	out, err := env.run(t, aliceEmail+"\n"+alicePassword+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email")
	assert.Contains(t, out, "Password")
	assert.Contains(t, out, "Logged in as alice")
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t, "file")

	_, err := env.run(t, "", "login", "--email", aliceEmail, "--password", "nope")
	require.Error(t, err)
	assert.Equal(t, "Login failed", common.UserMessage(err))

	out, err := env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t, "file")

	out, err := env.run(t, "", "register", "--username", "bob", "--email", "bob@example.com", "--password", "builder")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered and logged in as bob (bob@example.com)")

	out, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "bob@example.com")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	env := newTestEnv(t, "file")

	_, err := env.run(t, "bob\nbob@example.com\nbuilder\nbuilt\n", "register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")
}

func TestRegisterExistingEmail(t *testing.T) {
	env := newTestEnv(t, "file")

	_, err := env.run(t, "", "register", "--username", "alice", "--email", aliceEmail, "--password", "x")
	require.Error(t, err)
	assert.Equal(t, "Registration failed", common.UserMessage(err))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, "file")
	env.login(t)

	out, err := env.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = os.Stat(filepath.Join(env.dir, "session.json"))
	assert.True(t, os.IsNotExist(err))

	_, err = env.run(t, "", "payments")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Equal(t, "Not logged in. Run: spend login", common.UserMessage(err))
}

func TestSQLiteSession(t *testing.T) {
	env := newTestEnv(t, "sqlite")
	env.login(t)

	out, err := env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, aliceEmail)
	assert.Contains(t, out, "Session saved")

	_, err = env.run(t, "", "logout")
	require.NoError(t, err)

	out, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestExpiredSession(t *testing.T) {
	env := newTestEnv(t, "file")
	env.server.SetTokenTTL(-1)
	env.login(t)

	_, err := env.run(t, "", "payments")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Contains(t, common.UserMessage(err), "Run: spend login")
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	env := newTestEnv(t, "file")
	env.server.SetDefaults(aliceEmail, []string{"Grocer"}, nil)
	env.login(t)

	out, err := env.run(t, "", "defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Grocer")
	assert.Contains(t, out, "No payed-from defaults")

	out, err = env.run(t, "", "defaults", "payed-from", "add", "Wallet")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Wallet"`)
	assert.Contains(t, out, "1. Wallet")

	out, err = env.run(t, "", "defaults", "payed-to", "add", "Landlord")
	require.NoError(t, err)
	assert.Contains(t, out, "2. Landlord")

	out, err = env.run(t, "", "defaults", "payed-to", "rm", "Grocer")
	require.NoError(t, err)
	assert.Contains(t, out, `Removed "Grocer"`)
	assert.Contains(t, out, "1. Landlord")

	out, err = env.run(t, "", "defaults", "payed-to", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Landlord")
	assert.NotContains(t, out, "Grocer")
}

func TestDefaultsRequiresLogin(t *testing.T) {
	env := newTestEnv(t, "file")

	_, err := env.run(t, "", "defaults")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not logged in")
}

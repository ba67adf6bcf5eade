package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_MintsToken(t *testing.T) {
	t.Setenv("STAFF_JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"maria", "--ttl", "1h", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	require.NoError(t, cmd.Execute())

	raw := strings.TrimSpace(out.String())
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("cli-secret"), nil })
	require.NoError(t, err)

	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "maria", sub)
}

func TestRootCmd_RequiresName(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestRootCmd_EmptySecret(t *testing.T) {
	t.Setenv("STAFF_JWT_SECRET", "")

	cmd := rootCmd()
	cmd.SetArgs([]string{"maria", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

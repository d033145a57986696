package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptReadsCredentials(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("alice\nsecret\n"), &out)

	creds, err := term.Prompt(context.Background(), "x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, "secret", creds.Password)
	assert.Contains(t, out.String(), "Login required for x.com")
}

func TestPromptTrimsWhitespace(t *testing.T) {
	t.Parallel()

	term := NewTerminal(strings.NewReader("  bob  \r\nhunter2\r\n"), &bytes.Buffer{})

	creds, err := term.Prompt(context.Background(), "x.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", creds.Username)
	assert.Equal(t, "hunter2", creds.Password)
}

func TestPromptFailsOnClosedInput(t *testing.T) {
	t.Parallel()

	term := NewTerminal(strings.NewReader(""), &bytes.Buffer{})
	_, err := term.Prompt(context.Background(), "x.com")
	assert.Error(t, err)
}

func TestPromptHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	term := NewTerminal(strings.NewReader("alice\nsecret\n"), &bytes.Buffer{})
	_, err := term.Prompt(ctx, "x.com")
	assert.ErrorIs(t, err, context.Canceled)
}

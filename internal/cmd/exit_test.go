package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fulerrors "github.com/fulmenhq/gofulmen/errors"

	"github.com/devfolio/devfolio/internal/output"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, foundry.ExitFailure, ExitCodeFor(errors.New("boom")))

	tagged := withExitCode(foundry.ExitConfigInvalid, errors.New("bad config"))
	assert.Equal(t, foundry.ExitConfigInvalid, ExitCodeFor(tagged))
	assert.Equal(t, "bad config", tagged.Error())

	wrapped := fmt.Errorf("health: %w", withExitCode(foundry.ExitExternalServiceUnavailable, errors.New("down")))
	assert.Equal(t, foundry.ExitExternalServiceUnavailable, ExitCodeFor(wrapped))

	assert.NoError(t, withExitCode(foundry.ExitFailure, nil))
}

func TestWriteFatal(t *testing.T) {
	var buf bytes.Buffer
	writeFatal(&buf, "startup failed", nil)
	assert.Equal(t, "FATAL: startup failed\n", buf.String())

	buf.Reset()
	writeFatal(&buf, "startup failed", errors.New("no port"))
	assert.Equal(t, "FATAL: startup failed: no port\n", buf.String())

	buf.Reset()
	writeFatal(&buf, "startup failed", fulerrors.NewErrorEnvelope("CONFIG_INVALID", "bad port"))
	assert.Contains(t, buf.String(), "[CONFIG_INVALID]: bad port")
}

func newOutputCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addOutputFlags(c)
	return c
}

func TestResolveSink_OutDir(t *testing.T) {
	c := newOutputCommand()
	dir := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, c.Flags().Set("out-dir", dir))

	sink, err := resolveSink(c, "rate-limit.list", output.FormatJSON)
	require.NoError(t, err)
	_, err = sink.writer.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, sink.close())

	data, err := os.ReadFile(filepath.Join(dir, "rate-limit.list.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestResolveSink_Stdout(t *testing.T) {
	c := newOutputCommand()
	var buf bytes.Buffer
	c.SetOut(&buf)

	sink, err := resolveSink(c, "contact.list", output.FormatTable)
	require.NoError(t, err)
	assert.Equal(t, "-", sink.path)
	_, _ = sink.writer.Write([]byte("hello"))
	assert.Equal(t, "hello", buf.String())
}

func TestResolveSink_ExclusiveTargets(t *testing.T) {
	c := newOutputCommand()
	require.NoError(t, c.Flags().Set("out", "a.txt"))
	require.NoError(t, c.Flags().Set("out-dir", "b"))

	_, err := resolveSink(c, "x", output.FormatTable)
	assert.ErrorContains(t, err, "mutually exclusive")
}

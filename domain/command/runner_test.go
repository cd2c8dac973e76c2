package command

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecOutputAndStream(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	out, err := Exec{}.Output(context.Background(), t.TempDir(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	var buf bytes.Buffer
	require.NoError(t, Exec{}.Stream(context.Background(), &buf, "echo", "streamed"))
	assert.Equal(t, "streamed\n", buf.String())
}

func TestExecMissingBinary(t *testing.T) {
	_, err := Exec{}.Output(context.Background(), "", "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-real-binary-xyz")
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinribelotta/chibios-vfs/errors"
)

func runShell(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestScript(t *testing.T) {
	script := strings.Join([]string{
		"# comment",
		"write /RAM/log.txt hello world",
		"cat /RAM/log.txt",
		"ls /RAM",
		"ls",
		"stat /RAM/log.txt",
		"mounts",
	}, "\n")

	stdout, stderr, err := runShell(t, script)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "hello world\n")
	assert.Contains(t, stdout, "- ")
	assert.Contains(t, stdout, "log.txt\n")
	assert.Contains(t, stdout, "d         -  RAM\n")
	assert.Contains(t, stdout, "Size: 12 B (12 bytes)")
	assert.Contains(t, stdout, "Mode: 100666")
	assert.Contains(t, stdout, "/RAM         mounted\n")
	assert.NotContains(t, stdout, "\r\n")
}

func TestMountUmount(t *testing.T) {
	script := strings.Join([]string{
		"write /RAM/keep.txt kept",
		"umount /RAM",
		"ls /",
		"mount",
		"mount /RAM",
		"ls /",
		"cat /RAM/keep.txt",
	}, "\n")

	stdout, stderr, err := runShell(t, script)
	require.NoError(t, err, stderr)
	assert.Equal(t, "/RAM unmounted\n"+
		"Entries in fstab:\n- /RAM\n"+
		"/RAM mounted\n"+
		"d         -  RAM\n"+
		"kept\n", stdout)
}

func TestScriptContinuesAfterFailure(t *testing.T) {
	stdout, stderr, err := runShell(t, "cat /RAM/missing\nwrite /RAM/a ok\ncat /RAM/a\n")
	require.Error(t, err)
	assert.Contains(t, stderr, "cat /RAM/missing")
	assert.Contains(t, stdout, "ok\n")
}

func TestSingleCommand(t *testing.T) {
	stdout, _, err := runShell(t, "", "ls", "/")
	require.NoError(t, err)
	assert.Equal(t, "d         -  RAM\n", stdout)
}

func TestCRLF(t *testing.T) {
	stdout, _, err := runShell(t, "", "--crlf", "mounts")
	require.NoError(t, err)
	assert.Equal(t, "/RAM         mounted\r\n", stdout)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{name: "unknown", args: []string{"format"}, code: errors.CodeInvalidInput},
		{name: "cat without path", args: []string{"cat"}, code: errors.CodeInvalidInput},
		{name: "write without text", args: []string{"write", "/RAM/x"}, code: errors.CodeInvalidInput},
		{name: "stat missing", args: []string{"stat", "/RAM/none"}, code: errors.CodeBackendOpenFailed},
		{name: "no mount", args: []string{"cat", "nowhere"}, code: errors.CodeNoMount},
		{name: "ls missing", args: []string{"ls", "/RAM/none"}, code: errors.CodeNotFound},
		{name: "mount twice", args: []string{"mount", "/RAM"}, code: errors.CodeAlreadyMounted},
		{name: "mount unknown", args: []string{"mount", "/SD9"}, code: errors.CodeNotFound},
		{name: "mount extra args", args: []string{"mount", "/RAM", "/SD9"}, code: errors.CodeInvalidInput},
		{name: "umount without path", args: []string{"umount"}, code: errors.CodeInvalidInput},
		{name: "umount unknown", args: []string{"umount", "/SD9"}, code: errors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runShell(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "got %v", err)
		})
	}
}

func TestFstabFile(t *testing.T) {
	dir := t.TempDir()
	sd := filepath.Join(dir, "sd")
	require.NoError(t, os.Mkdir(sd, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sd, "boot.txt"), []byte("from disk\n"), 0o644))

	file := filepath.Join(dir, "fstab.yaml")
	require.NoError(t, os.WriteFile(file, []byte("mounts:\n  - path: /SD1\n    type: local\n    root: "+sd+"\n"), 0o644))

	stdout, _, err := runShell(t, "", "--fstab", file, "cat", "/SD1/boot.txt")
	require.NoError(t, err)
	assert.Equal(t, "from disk\n", stdout)

	_, _, err = runShell(t, "", "--fstab", file, "write", "/SD1/new.txt", "persisted")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(sd, "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "persisted\n", string(data))
}

func TestFlagErrors(t *testing.T) {
	_, _, err := runShell(t, "", "--log-level", "loud", "mounts")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))

	_, _, err = runShell(t, "", "--fstab", filepath.Join(t.TempDir(), "none.yaml"), "mounts")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))

	_, _, err = runShell(t, "", "--no-such-flag")
	assert.Error(t, err)

	_, stderr, err := runShell(t, "", "--help")
	assert.NoError(t, err)
	assert.Contains(t, stderr, "Usage: vfsh")
}

func TestMaxFD(t *testing.T) {
	// Three console slots leave nothing for files.
	_, _, err := runShell(t, "", "--max-fd", "3", "cat", "/RAM/x")
	assert.True(t, errors.HasCode(err, errors.CodeResourceExhausted))
}

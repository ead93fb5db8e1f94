package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEngine(t *testing.T) {
	originalStat := osStat
	originalLookPath := execLookPath
	defer func() {
		osStat = originalStat
		execLookPath = originalLookPath
	}()

	t.Run("engine found via exec.LookPath", func(t *testing.T) {
		execLookPath = func(file string) (string, error) {
			if file == "nucdata-engine" {
				return "/usr/local/bin/nucdata-engine", nil
			}
			return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
		}
		osStat = func(name string) (os.FileInfo, error) {
			return nil, &os.PathError{Op: "stat", Path: name, Err: fmt.Errorf("not found")}
		}

		result := checkEngine("nucdata-engine")
		assert.Equal(t, "/usr/local/bin/nucdata-engine", result)
	})

	t.Run("engine found via os.Stat", func(t *testing.T) {
		execLookPath = func(file string) (string, error) {
			return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
		}
		osStat = func(name string) (os.FileInfo, error) {
			if name == "/opt/nucdata/engine" {
				return nil, nil
			}
			return nil, &os.PathError{Op: "stat", Path: name, Err: fmt.Errorf("not found")}
		}

		result := checkEngine("/opt/nucdata/engine")
		assert.Equal(t, "/opt/nucdata/engine", result)
	})

	t.Run("engine not found", func(t *testing.T) {
		execLookPath = func(file string) (string, error) {
			return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
		}
		osStat = func(name string) (os.FileInfo, error) {
			return nil, &os.PathError{Op: "stat", Path: name, Err: fmt.Errorf("not found")}
		}

		result := checkEngine("nucdata-engine")
		assert.Equal(t, "", result)
	})
}

func TestCheckWritePermissions(t *testing.T) {
	t.Run("writable directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		oldDir, _ := os.Getwd()
		require.NoError(t, os.Chdir(tmpDir))
		defer os.Chdir(oldDir)

		assert.True(t, checkWritePermissions())

		// The temporary check file must not be left behind
		_, err := os.Stat(filepath.Join(tmpDir, ".nucdata_test_write"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("read-only directory", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}
		tmpDir := t.TempDir()
		require.NoError(t, os.Chmod(tmpDir, 0o444))
		t.Cleanup(func() { os.Chmod(tmpDir, 0o755) })

		oldDir, _ := os.Getwd()
		require.NoError(t, os.Chdir(tmpDir))
		defer os.Chdir(oldDir)

		assert.False(t, checkWritePermissions())
	})
}

func TestCheckLedgerDir(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want bool
	}{
		{
			name: "directory exists",
			path: func(t *testing.T) string { return t.TempDir() },
			want: true,
		},
		{
			name: "directory missing",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "ledger")
			},
			want: false,
		},
		{
			name: "path is a file",
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "ledger")
				require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
				return p
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkLedgerDir(tt.path(t)))
		})
	}
}

func TestParseParticles(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		want    int
		wantErr bool
	}{
		{name: "default is empty", flags: nil, want: 0},
		{name: "single", flags: []string{"--particles", "neutron"}, want: 1},
		{name: "mixed case", flags: []string{"--particles", "Photon,THERMAL"}, want: 2},
		{name: "unknown", flags: []string{"--particles", "muon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "convert"}
			cmd.Flags().StringSliceP("particles", "p", nil, "")
			require.NoError(t, cmd.ParseFlags(tt.flags))

			particles, err := parseParticles(cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, particles, tt.want)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	assert.NotPanics(t, func() { versionCmd.Run(versionCmd, nil) })
}

func TestDoctorCmd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network-dependent check")
	}
	assert.NoError(t, doctorCmd.RunE(doctorCmd, nil))
}

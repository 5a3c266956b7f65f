package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const helperEnv = "CAD_TO_H5M_HELPER_BRIDGE"

func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) != "" {
		runHelperBridge(os.Getenv(helperEnv))
		os.Exit(0)
	}
	goleak.VerifyTestMain(m)
}

// runHelperBridge is a minimal bridge that speaks the JSON-lines protocol.
// mode "refuse" fails the init handshake.
func runHelperBridge(mode string) {
	fmt.Fprintln(os.Stderr, "helper bridge ready")
	in := bufio.NewScanner(os.Stdin)
	out := json.NewEncoder(os.Stdout)
	volumes := []int{1}

	for in.Scan() {
		var req request
		if err := json.Unmarshal(in.Bytes(), &req); err != nil {
			out.Encode(response{Error: err.Error()})
			continue
		}
		switch req.Op {
		case "init":
			if mode == "refuse" {
				out.Encode(response{Error: "no license"})
				continue
			}
			out.Encode(response{OK: true, Output: "engine " + req.Path})
		case "cmd":
			switch {
			case strings.HasPrefix(req.Command, "import"):
				volumes = append(volumes, volumes[len(volumes)-1]+1)
				out.Encode(response{OK: true})
			case strings.HasPrefix(req.Command, "bogus"):
				out.Encode(response{Error: "unknown command"})
			default:
				out.Encode(response{OK: true})
			}
		case "list":
			out.Encode(response{OK: true, IDs: volumes})
		case "planar":
			out.Encode(response{OK: true, Planar: req.ID%2 == 0})
		case "exit":
			return
		}
	}
}

func helperConfig(t *testing.T, mode string) Config {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	return Config{
		Path:   "/opt/engine",
		Bridge: exe,
		Env:    []string{helperEnv + "=" + mode},
	}
}

func TestProcessRoundTrip(t *testing.T) {
	p, err := Start(context.Background(), helperConfig(t, "ok"), nil)
	require.NoError(t, err)

	s := NewCommandSession(p, nil, nil)

	before, err := s.Query(KindVolume, All())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, before)

	require.NoError(t, s.Import(FormatSTEP, "part.stp", SolidsOnly()))
	after, err := s.Query(KindVolume, All())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, after)

	planar, err := s.IsPlanar(4)
	require.NoError(t, err)
	assert.True(t, planar)

	err = p.Execute("bogus command")
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "bogus command", cmdErr.Command)
	assert.Contains(t, cmdErr.Error(), "unknown command")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Error(t, p.Execute("imprint body all"))
}

func TestStartFailsWhenHandshakeIsRefused(t *testing.T) {
	_, err := Start(context.Background(), helperConfig(t, "refuse"), nil)

	var unavailable *EngineUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "/opt/engine", unavailable.Path)
	assert.Contains(t, err.Error(), "no license")
}

func TestStartFailsWhenBridgeIsMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(context.Background(), Config{Path: dir}, nil, nil)

	var unavailable *EngineUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, dir, unavailable.Path)
	assert.Contains(t, err.Error(), filepath.Join(dir, DefaultBridge))
}

func TestConfigExecutable(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"default bridge in engine path", Config{Path: "/opt/cubit/bin"}, filepath.Join("/opt/cubit/bin", DefaultBridge)},
		{"custom relative bridge", Config{Path: "/opt/cubit/bin", Bridge: "bridge.sh"}, filepath.Join("/opt/cubit/bin", "bridge.sh")},
		{"absolute bridge", Config{Path: "/opt/cubit/bin", Bridge: "/usr/local/bin/bridge"}, "/usr/local/bin/bridge"},
		{"no engine path", Config{}, DefaultBridge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Executable())
		})
	}
}

package networktools

import (
	"bytes"
	"context"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scli/internal/config"
	"github.com/zjrosen/scli/internal/script"
)

// scriptedUI answers Select and Input from queues.
type scriptedUI struct {
	selects []string
	inputs  []string
	titles  []string
}

func (u *scriptedUI) Select(_ context.Context, title string, choices []script.Choice) (script.Choice, error) {
	u.titles = append(u.titles, title)
	if len(u.selects) == 0 {
		return script.Choice{}, script.ErrCancelled
	}
	v := u.selects[0]
	u.selects = u.selects[1:]
	for _, c := range choices {
		if c.Value == v {
			return c, nil
		}
	}
	return script.Choice{}, script.ErrCancelled
}

func (u *scriptedUI) Input(context.Context, string, string) (string, error) {
	if len(u.inputs) == 0 {
		return "", script.ErrCancelled
	}
	v := u.inputs[0]
	u.inputs = u.inputs[1:]
	return v, nil
}

func (u *scriptedUI) Confirm(context.Context, string, bool) (bool, error) { return false, nil }

func listen(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func TestPingArgs(t *testing.T) {
	require.Equal(t, []string{"-n", "4", "example.com"}, PingArgs("windows", "example.com", 4))
	require.Equal(t, []string{"-c", "2", "example.com"}, PingArgs("linux", "example.com", 2))
}

func TestParsePort(t *testing.T) {
	p, err := ParsePort(" 8080 ")
	require.NoError(t, err)
	require.Equal(t, 8080, p)

	for _, bad := range []string{"", "http", "0", "65536", "-1"} {
		_, err := ParsePort(bad)
		require.Error(t, err, bad)
	}
}

func TestPortOpen(t *testing.T) {
	host, port := listen(t)
	tools := NewTools()
	require.True(t, tools.PortOpen(context.Background(), host, port, time.Second))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closed := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	require.False(t, tools.PortOpen(context.Background(), host, closed, time.Second))
}

func TestLookup_IPAddress(t *testing.T) {
	res, err := NewTools().Lookup(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, []string{"127.0.0.1"}, res.Addresses)
}

func TestInterfaces(t *testing.T) {
	ifaces, err := NewTools().Interfaces()
	require.NoError(t, err)
	require.NotEmpty(t, ifaces)
}

func fakeCommand(name string, args ...string) func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
	return func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, name, args...)
	}
}

func TestPing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX commands")
	}
	tools := NewTools()

	tools.Command = fakeCommand("echo", "rtt min/avg/max = 1/2/3 ms")
	res, err := tools.Ping(context.Background(), "example.com", 1)
	require.NoError(t, err)
	require.True(t, res.Reachable)
	require.Equal(t, "rtt min/avg/max = 1/2/3 ms", res.Summary)

	tools.Command = fakeCommand("false")
	res, err = tools.Ping(context.Background(), "example.com", 1)
	require.NoError(t, err)
	require.False(t, res.Reachable)

	tools.Command = fakeCommand("scli-no-such-binary")
	_, err = tools.Ping(context.Background(), "example.com", 1)
	require.Error(t, err)
}

func TestLoop_PortCheckThenExit(t *testing.T) {
	host, port := listen(t)
	ui := &scriptedUI{
		selects: []string{actionPort, actionPort, actionExit},
		inputs:  []string{host, strconv.Itoa(port), host, "99999"},
	}

	var out bytes.Buffer
	env := &script.Env{Name: Key, Stdout: &out, UI: ui, Config: config.Values{"timeout": "1s"}}
	require.NoError(t, NewTools().Loop(context.Background(), env))

	require.Contains(t, out.String(), "is open on 127.0.0.1")
	require.Contains(t, out.String(), "port must be between 1 and 65535")
	require.Contains(t, out.String(), "Goodbye!")
	require.Len(t, ui.titles, 3)
}

func TestLoop_CancelledInputReturnsToMenu(t *testing.T) {
	ui := &scriptedUI{selects: []string{actionDNS, actionDNS}, inputs: []string{"  "}}

	var out bytes.Buffer
	env := &script.Env{Name: Key, Stdout: &out, UI: ui}
	require.NoError(t, NewTools().Loop(context.Background(), env))

	require.Contains(t, out.String(), "Please enter a valid hostname or IP")
	require.Len(t, ui.titles, 3, "menu shown again after each cancelled tool, then cancelled")
}

func TestLoop_RequiresUI(t *testing.T) {
	err := Run(context.Background(), &script.Env{Name: Key, Stdout: &bytes.Buffer{}})
	require.Error(t, err)
}

package networktools

import (
	"context"
	"errors"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Tools holds the network primitives used by the menu.
type Tools struct {
	Dialer   *net.Dialer
	Resolver *net.Resolver

	// Command builds the ping process. Replaced in tests.
	Command func(ctx context.Context, name string, args ...string) *exec.Cmd
	// GOOS selects the ping count flag.
	GOOS string
}

// NewTools returns Tools backed by the system resolver and ping binary.
func NewTools() *Tools {
	return &Tools{
		Dialer:   &net.Dialer{},
		Resolver: net.DefaultResolver,
		Command:  exec.CommandContext,
		GOOS:     runtime.GOOS,
	}
}

// PingResult is the outcome of one ping run.
type PingResult struct {
	Reachable bool
	TimedOut  bool
	Summary   string // Last line of the ping output
}

// PingArgs returns the ping arguments for goos.
func PingArgs(goos, host string, count int) []string {
	flag := "-c"
	if goos == "windows" {
		flag = "-n"
	}
	return []string{flag, strconv.Itoa(count), host}
}

// Ping runs the system ping command with a fixed timeout. A non-zero exit
// means unreachable; a missing ping binary is an error.
func (t *Tools) Ping(ctx context.Context, host string, count int) (PingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	cmd := t.Command(ctx, "ping", PingArgs(t.GOOS, host, count)...)
	out, err := cmd.Output()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return PingResult{TimedOut: true}, nil
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return PingResult{}, err
	}
	return PingResult{Reachable: err == nil, Summary: lastLine(string(out))}, nil
}

// PortOpen reports whether a TCP connection to host:port succeeds within timeout.
func (t *Tools) PortOpen(ctx context.Context, host string, port int, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := t.Dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// LookupResult holds forward and reverse DNS answers.
type LookupResult struct {
	Addresses []string
	Names     []string
}

// Lookup resolves a host name to addresses, then reverse-resolves the first
// address. An IP address input is only reverse-resolved.
func (t *Tools) Lookup(ctx context.Context, host string) (LookupResult, error) {
	var res LookupResult
	if ip := net.ParseIP(host); ip != nil {
		res.Addresses = []string{ip.String()}
	} else {
		addrs, err := t.Resolver.LookupHost(ctx, host)
		if err != nil {
			return res, err
		}
		res.Addresses = addrs
	}

	if len(res.Addresses) > 0 {
		if names, err := t.Resolver.LookupAddr(ctx, res.Addresses[0]); err == nil {
			for _, n := range names {
				res.Names = append(res.Names, strings.TrimSuffix(n, "."))
			}
		}
	}
	return res, nil
}

// Interface is a summary of one local network interface.
type Interface struct {
	Name      string
	Flags     string
	Addresses []string
}

// Interfaces lists the local interfaces and their addresses.
func (t *Tools) Interfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		summary := Interface{Name: iface.Name, Flags: iface.Flags.String()}
		if addrs, err := iface.Addrs(); err == nil {
			for _, a := range addrs {
				summary.Addresses = append(summary.Addresses, a.String())
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// Package networktools is an interactive menu of small network checks.
package networktools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zjrosen/scli/internal/log"
	"github.com/zjrosen/scli/internal/script"
)

// Key is the builtin key and default script name.
const Key = "network_tools"

// Default settings, overridable through the script config.
const (
	DefaultTimeout   = 5 * time.Second
	DefaultPingCount = 4
	PingTimeout      = 10 * time.Second
)

// Menu values.
const (
	actionPing       = "ping"
	actionPort       = "port"
	actionDNS        = "dns"
	actionInterfaces = "interfaces"
	actionExit       = "exit"
)

var menuChoices = []script.Choice{
	{Label: "Ping a host", Value: actionPing, Description: "system ping"},
	{Label: "Check if a port is open", Value: actionPort, Description: "TCP connect"},
	{Label: "DNS lookup", Value: actionDNS, Description: "forward and reverse"},
	{Label: "Show network interfaces", Value: actionInterfaces},
	{Label: "Exit", Value: actionExit},
}

// Module implements the script.Module interface for this package.
type Module struct{}

// Register registers the entry point.
func (m *Module) Register(b *script.Builtins) {
	b.Register(Key, "Network utilities (ping, port check, DNS lookup, interfaces)", Run)
}

// Run shows the tool menu until the user exits or cancels.
func Run(ctx context.Context, env *script.Env) error {
	return NewTools().Loop(ctx, env)
}

// Loop runs the menu with t's network primitives.
func (t *Tools) Loop(ctx context.Context, env *script.Env) error {
	if env.UI == nil {
		return errors.New("network_tools needs an interactive UI")
	}

	timeout := DefaultTimeout
	pingCount := DefaultPingCount
	if env.Config != nil {
		timeout = env.Config.Duration("timeout", DefaultTimeout)
		pingCount = env.Config.Int("ping_count", DefaultPingCount)
	}

	env.Println("Network Tools")
	env.Println(strings.Repeat("=", 50))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := env.UI.Select(ctx, "Select a network tool", menuChoices)
		if errors.Is(err, script.ErrCancelled) || (err == nil && choice.Value == actionExit) {
			env.Println("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		if err := t.dispatch(ctx, env, choice.Value, timeout, pingCount); err != nil {
			if errors.Is(err, script.ErrCancelled) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Debug(log.CatScript, "network tool failed", "tool", choice.Value, "error", err.Error())
			env.Printf("Error: %v\n", err)
		}
	}
}

func (t *Tools) dispatch(ctx context.Context, env *script.Env, action string, timeout time.Duration, pingCount int) error {
	switch action {
	case actionPing:
		host, err := askHost(ctx, env, "Enter hostname or IP to ping")
		if err != nil {
			return err
		}
		env.Printf("\nPinging %s...\n", host)
		res, err := t.Ping(ctx, host, pingCount)
		if err != nil {
			return err
		}
		switch {
		case res.TimedOut:
			env.Printf("Ping to %s timed out\n", host)
		case res.Reachable:
			env.Printf("%s is reachable\n", host)
			if res.Summary != "" {
				env.Printf("  %s\n", res.Summary)
			}
		default:
			env.Printf("%s is not reachable\n", host)
		}

	case actionPort:
		host, err := askHost(ctx, env, "Enter hostname or IP")
		if err != nil {
			return err
		}
		raw, err := env.UI.Input(ctx, "Enter port number", "")
		if err != nil {
			return err
		}
		port, err := ParsePort(raw)
		if err != nil {
			env.Printf("%v\n", err)
			return nil
		}
		env.Printf("\nChecking %s:%d...\n", host, port)
		if t.PortOpen(ctx, host, port, timeout) {
			env.Printf("Port %d is open on %s\n", port, host)
		} else {
			env.Printf("Port %d is closed on %s\n", port, host)
		}

	case actionDNS:
		host, err := askHost(ctx, env, "Enter domain name or IP address")
		if err != nil {
			return err
		}
		env.Printf("\nLooking up %s...\n", host)
		res, err := t.Lookup(ctx, host)
		if err != nil {
			env.Printf("Could not resolve: %s\n", host)
			return nil
		}
		if len(res.Addresses) > 0 {
			env.Printf("%s resolves to: %s\n", host, strings.Join(res.Addresses, ", "))
		}
		if len(res.Names) > 0 {
			env.Printf("Reverse lookup: %s\n", strings.Join(res.Names, ", "))
		} else {
			env.Println("Reverse lookup: Not available")
		}

	case actionInterfaces:
		ifaces, err := t.Interfaces()
		if err != nil {
			return err
		}
		env.Println("\nNetwork Interface Information")
		env.Println(strings.Repeat("-", 40))
		for _, iface := range ifaces {
			env.Printf("%s (%s)\n", iface.Name, iface.Flags)
			for _, a := range iface.Addresses {
				env.Printf("  %s\n", a)
			}
		}
	}
	return nil
}

func askHost(ctx context.Context, env *script.Env, prompt string) (string, error) {
	host, err := env.UI.Input(ctx, prompt, "")
	if err != nil {
		return "", err
	}
	host = strings.TrimSpace(host)
	if host == "" {
		env.Println("Please enter a valid hostname or IP")
		return "", script.ErrCancelled
	}
	return host, nil
}

// ParsePort validates a TCP port number.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("please enter a valid port number")
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1 and 65535")
	}
	return port, nil
}

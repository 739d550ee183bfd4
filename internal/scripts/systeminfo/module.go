// Package systeminfo prints a summary of the host and runtime.
package systeminfo

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/zjrosen/scli/internal/script"
)

// Key is the builtin key and default script name.
const Key = "system_info"

// Module implements the script.Module interface for this package.
type Module struct{}

// Register registers the entry point.
func (m *Module) Register(b *script.Builtins) {
	b.Register(Key, "Display system information", Run)
}

// Info is one snapshot of the host.
type Info struct {
	OS           string
	Architecture string
	Hostname     string
	CPUs         int
	GoVersion    string
	WorkDir      string
	Time         time.Time
}

// Collect gathers Info for the current process. workDir overrides the
// process working directory when non-empty.
func Collect(workDir string, now time.Time) Info {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		}
	}
	return Info{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		Hostname:     host,
		CPUs:         runtime.NumCPU(),
		GoVersion:    runtime.Version(),
		WorkDir:      workDir,
		Time:         now,
	}
}

// Run prints the system information block.
func Run(_ context.Context, env *script.Env) error {
	info := Collect(env.WorkDir, time.Now())
	const title = "=== System Information ==="

	env.Println(title)
	env.Printf("Platform: %s\n", info.OS)
	env.Printf("Architecture: %s\n", info.Architecture)
	env.Printf("Hostname: %s\n", info.Hostname)
	env.Printf("CPUs: %d\n", info.CPUs)
	env.Printf("Go Version: %s\n", info.GoVersion)
	env.Printf("Current Directory: %s\n", info.WorkDir)
	env.Printf("Current Time: %s\n", info.Time.Format("2006-01-02 15:04:05"))
	env.Println(strings.Repeat("=", len(title)))
	return nil
}

package host

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// Probe reports capabilities of the current host.
// Implementations must not cache lookups: the environment can change between
// runs of a long-lived process.
type Probe interface {
	// IsHostPlatform reports whether platform (engine naming: linux, win32, darwin, mas)
	// is the platform of this host.
	IsHostPlatform(platform string) bool
	// HasExecutable reports whether name resolves on the executable search path.
	HasExecutable(name string) bool
	// IsProcessRunning reports whether a process with the given executable name is alive.
	IsProcessRunning(name string) (bool, error)
}

// System is the Probe backed by the running operating system.
type System struct{}

// NewSystem returns the Probe of the running operating system.
func NewSystem() *System {
	return &System{}
}

// IsHostPlatform implements Probe.
func (*System) IsHostPlatform(platform string) bool {
	return Platform() == platform || (platform == "mas" && Platform() == "darwin")
}

// HasExecutable implements Probe.
func (*System) HasExecutable(name string) bool {
	_, err := exec.LookPath(name)

	return err == nil
}

// IsProcessRunning implements Probe. The comparison ignores case and the
// ".exe" suffix so that names work the same on every platform.
func (*System) IsProcessRunning(name string) (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	want := executableKey(name)
	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if executableKey(process.Executable()) == want {
			return true, nil
		}
	}

	return false, nil
}

// Platform returns the engine name of the host platform.
func Platform() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	default:
		return runtime.GOOS
	}
}

// Arch returns the engine name of the host architecture.
func Arch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "386":
		return "ia32"
	case "arm":
		return "armv7l"
	default:
		return runtime.GOARCH
	}
}

func executableKey(name string) string {
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, `\`, "/")))

	return strings.TrimSuffix(base, ".exe")
}

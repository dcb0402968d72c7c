package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Platform represents the detected platform
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL     Platform = "wsl"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

// DisplayServer represents the windowing system in use.
// Window introspection via xdotool only works on X11; Wayland compositors
// do not expose a global window list to clients.
type DisplayServer string

const (
	DisplayX11     DisplayServer = "x11"
	DisplayWayland DisplayServer = "wayland"
	DisplayQuartz  DisplayServer = "quartz"
	DisplayNone    DisplayServer = "none"
)

// cached detection results
var (
	detectedPlatform Platform
	detectedDisplay  DisplayServer
	detectionDone    bool
)

// Detect returns the current platform, caching the result
func Detect() Platform {
	if !detectionDone {
		runDetection()
	}
	return detectedPlatform
}

// Display returns the detected display server, caching the result
func Display() DisplayServer {
	if !detectionDone {
		runDetection()
	}
	return detectedDisplay
}

func runDetection() {
	detectedPlatform = detectPlatform()
	detectedDisplay = detectDisplay(detectedPlatform)
	detectionDone = true
}

func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		if isWSL() {
			return PlatformWSL
		}
		return PlatformLinux
	default:
		return PlatformUnknown
	}
}

// isWSL checks for WSL signatures: the WSL_DISTRO_NAME env var or
// "microsoft" in /proc/version.
func isWSL() bool {
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return true
	}
	procVersion, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(procVersion)), "microsoft")
}

func detectDisplay(p Platform) DisplayServer {
	switch p {
	case PlatformMacOS:
		return DisplayQuartz
	case PlatformLinux, PlatformWSL:
		// XDG_SESSION_TYPE is the most reliable signal when present.
		switch os.Getenv("XDG_SESSION_TYPE") {
		case "x11":
			return DisplayX11
		case "wayland":
			return DisplayWayland
		}
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			return DisplayWayland
		}
		if os.Getenv("DISPLAY") != "" {
			return DisplayX11
		}
		return DisplayNone
	default:
		return DisplayNone
	}
}

// tool lookup results, cached per process
var (
	toolMu    sync.Mutex
	toolCache = map[string]bool{}
)

// HasTool reports whether an external helper binary is on PATH.
func HasTool(name string) bool {
	toolMu.Lock()
	defer toolMu.Unlock()
	if ok, cached := toolCache[name]; cached {
		return ok
	}
	_, err := exec.LookPath(name)
	toolCache[name] = err == nil
	return err == nil
}

// SupportsIntrospection reports whether this host can enumerate top-level
// windows and read their titles. Absence is a supported degraded mode:
// the simulator still launches and drives the editor blind.
func SupportsIntrospection() bool {
	switch Detect() {
	case PlatformMacOS:
		return HasTool("osascript")
	case PlatformLinux, PlatformWSL:
		return Display() == DisplayX11 && HasTool("xdotool")
	default:
		return false
	}
}

// SupportsInjection reports whether this host can synthesize keyboard input.
// Unlike introspection, injection is a hard requirement for tab cycling.
func SupportsInjection() bool {
	switch Detect() {
	case PlatformMacOS:
		return HasTool("osascript")
	case PlatformLinux, PlatformWSL:
		return Display() == DisplayX11 && HasTool("xdotool")
	default:
		return false
	}
}

// DefaultEditor returns the platform's stock plain-text editor executable,
// used when the config does not name one.
func DefaultEditor() string {
	switch Detect() {
	case PlatformMacOS:
		return "TextEdit"
	case PlatformWindows:
		return "notepad.exe"
	default:
		return "gedit"
	}
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL:
		return "WSL"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

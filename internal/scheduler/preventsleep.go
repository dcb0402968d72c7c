package scheduler

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/platform"
)

// holdAwake runs a platform idle inhibitor for the lifetime of ctx. Best
// effort: missing tools just mean the OS may sleep on its own schedule.
func holdAwake(ctx context.Context, log *slog.Logger) {
	name, args := inhibitCommand()
	if name == "" {
		log.Debug("sleep_inhibitor_unavailable")
		return
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		log.Warn("sleep_inhibitor_failed", slog.String("tool", name), slog.String("error", err.Error()))
		return
	}
	log.Info("sleep_inhibitor_active", slog.String("tool", name))

	// CommandContext kills the inhibitor when ctx ends; Wait reaps it.
	_ = cmd.Wait()
}

func inhibitCommand() (string, []string) {
	switch platform.Detect() {
	case platform.PlatformMacOS:
		if platform.HasTool("caffeinate") {
			return "caffeinate", []string{"-dims"}
		}
	case platform.PlatformLinux, platform.PlatformWSL:
		if platform.HasTool("systemd-inhibit") {
			return "systemd-inhibit", []string{
				"--what=idle:sleep",
				"--who=pc-activity-simulator",
				"--why=simulating user activity",
				"sleep", "infinity",
			}
		}
	}
	return "", nil
}

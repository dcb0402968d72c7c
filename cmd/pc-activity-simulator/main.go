package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/activity"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/config"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/input"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/platform"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/scheduler"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/session"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/statedb"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/ui"
	"github.com/YordanOpenShield/pc-activity-simulator/internal/winctl"
)

const Version = "0.3.0"

// Table column widths for windows command output
const (
	tableColID    = 14
	tableColClass = 16
	tableColTitle = 48
)

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	// Allow user override via environment variable
	// PCSIM_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("PCSIM_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// Fallback: ANSI256 works in SSH, basic terminals and older emulators
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("pc-activity-simulator v%s (%s)\n", Version, platform.Detect())
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "run":
			handleRun(args[1:])
			return
		case "once":
			handleOnce(args[1:])
			return
		case "locate":
			handleLocate(args[1:])
			return
		case "close":
			handleClose(args[1:])
			return
		case "windows", "ls":
			handleWindows(args[1:])
			return
		case "history":
			handleHistory(args[1:])
			return
		case "watch":
			handleWatch(args[1:])
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
			printHelp()
			os.Exit(1)
		}
	}

	// No subcommand: run the loop, same as `run`.
	handleRun(nil)
}

func printHelp() {
	fmt.Println(`pc-activity-simulator - keep a desktop looking busy

Usage:
  pc-activity-simulator [command] [flags]

Commands:
  run        Run the periodic activity loop (default)
  once       Perform a single activity and exit
  locate     Find or create the tagged editor session
  close      Close the target editor
  windows    List visible top-level windows
  history    Show recorded activity runs
  watch      Live dashboard (TUI)
  version    Print version
  help       Show this help

Run 'pc-activity-simulator <command> -h' for command flags.
Config lives at ~/.pc-activity-simulator/config.toml`)
}

// app bundles the wired components every subcommand needs.
type app struct {
	cfgDir string
	cfg    *config.UserConfig
	dir    *winctl.Directory
	inj    input.Injector
	ptr    input.Pointer
	loc    *session.Locator
	term   *session.Terminator
	db     *statedb.StateDB
}

func setup(withDB, debug bool) (*app, error) {
	cfgDir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return nil, err
	}

	level := cfg.Logs.Level
	if debug {
		level = "debug"
	}
	logging.Init(logging.Config{
		LogDir:     cfgDir,
		Level:      level,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   true,
		Debug:      debug,
	})

	sessCfg := session.Config{
		Executable:  cfg.Editor.GetExecutable(),
		WindowHint:  cfg.Editor.WindowHint,
		SettleDelay: cfg.Editor.GetSettleDelay(),
		MaxCycles:   cfg.Editor.GetMaxCycles(),
		KeyInterval: cfg.Typing.GetKeyInterval(),
	}
	dir := winctl.NewDirectory(winctl.NewIntrospector())

	a := &app{
		cfgDir: cfgDir,
		cfg:    cfg,
		dir:    dir,
		inj:    input.NewInjector(),
		ptr:    input.NewPointer(),
		loc:    session.NewLocator(dir, input.NewInjector(), sessCfg),
		term:   session.NewTerminator(dir, sessCfg),
	}

	if withDB {
		db, err := statedb.Open(filepath.Join(cfgDir, "state.db"))
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		statedb.SetGlobal(db)
		a.db = db
	}
	return a, nil
}

func (a *app) shutdown() {
	if a.db != nil {
		statedb.SetGlobal(nil)
		a.db.Close()
	}
	logging.Shutdown()
}

func (a *app) buildActivity(kind string) (activity.Activity, error) {
	switch kind {
	case activity.KindMouse:
		return activity.NewJiggle(a.ptr, a.cfg.Mouse.GetMaxOffset()), nil
	case activity.KindEditor:
		typer := activity.NewTyper(a.inj, a.cfg.Typing.GetKeyInterval())
		create := a.cfg.Editor.GetCreateIfMissing()
		return activity.NewEditor(a.loc, typer, activity.EditorConfig{
			Marker:          a.cfg.Editor.GetMarker(),
			Timeout:         a.cfg.Editor.GetTimeout(),
			CreateIfMissing: &create,
			SymbolCount:     a.cfg.Typing.GetCount(),
			EraseAfter:      a.cfg.Typing.EraseAfter,
		}), nil
	default:
		return nil, fmt.Errorf("unknown activity %q (want mouse or editor)", kind)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	activityFlag := fs.String("activity", "", "activity type: mouse or editor (default from config)")
	intervalFlag := fs.Float64("interval-minutes", 0, "minutes between activities (default from config)")
	noSleep := fs.Bool("no-prevent-sleep", false, "don't ask the OS to stay awake")
	debug := fs.Bool("debug", false, "debug logging")
	_ = fs.Parse(args)

	a, err := setup(true, *debug)
	if err != nil {
		fatal(err)
	}
	defer a.shutdown()

	kind := a.cfg.GetActivity()
	if *activityFlag != "" {
		kind = *activityFlag
	}
	act, err := a.buildActivity(kind)
	if err != nil {
		fatal(err)
	}

	interval := a.cfg.GetInterval()
	if *intervalFlag > 0 {
		interval = time.Duration(*intervalFlag * float64(time.Minute))
	}
	preventSleep := a.cfg.GetPreventSleep() && !*noSleep

	sched := scheduler.New(act, a.db, scheduler.Config{
		Interval:     interval,
		PreventSleep: preventSleep,
	})

	ctx, cancel := signalContext()
	defer cancel()

	// Config hot reload: interval changes apply without a restart.
	if watcher, err := config.NewWatcher(a.cfgDir); err == nil {
		defer watcher.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case fresh, ok := <-watcher.Updates():
					if !ok {
						return
					}
					sched.SetInterval(fresh.GetInterval())
				}
			}
		}()
	}

	fmt.Printf("Simulating %s activity every %s (Ctrl+C to stop)\n", kind, interval)
	if err := sched.Run(ctx); err != nil {
		fatal(err)
	}
}

func handleOnce(args []string) {
	fs := flag.NewFlagSet("once", flag.ExitOnError)
	activityFlag := fs.String("activity", "", "activity type: mouse or editor (default from config)")
	debug := fs.Bool("debug", false, "debug logging")
	_ = fs.Parse(args)

	a, err := setup(true, *debug)
	if err != nil {
		fatal(err)
	}
	defer a.shutdown()

	kind := a.cfg.GetActivity()
	if *activityFlag != "" {
		kind = *activityFlag
	}
	act, err := a.buildActivity(kind)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	sched := scheduler.New(act, a.db, scheduler.Config{})
	rep, err := sched.RunOnce(ctx)
	if err != nil {
		fatal(err)
	}
	if rep != nil && rep.Detail != "" {
		fmt.Println(rep.Detail)
	} else {
		fmt.Println("done")
	}
}

func handleLocate(args []string) {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	marker := fs.String("marker", "", "tab marker (default from config)")
	timeout := fs.Duration("timeout", 0, "window appearance timeout (default from config)")
	noCreate := fs.Bool("no-create", false, "don't create the tagged tab when missing")
	jsonOut := fs.Bool("json", false, "JSON output")
	debug := fs.Bool("debug", false, "debug logging")
	_ = fs.Parse(args)

	a, err := setup(false, *debug)
	if err != nil {
		fatal(err)
	}
	defer a.shutdown()

	q := session.Query{
		Marker:          a.cfg.Editor.GetMarker(),
		Timeout:         a.cfg.Editor.GetTimeout(),
		CreateIfMissing: a.cfg.Editor.GetCreateIfMissing() && !*noCreate,
	}
	if *marker != "" {
		q.Marker = *marker
	}
	if *timeout > 0 {
		q.Timeout = *timeout
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := a.loc.Locate(ctx, q)
	if err != nil {
		fatal(err)
	}

	if *jsonOut {
		out := map[string]any{
			"outcome": res.Outcome,
			"spawned": res.Process != nil,
		}
		if res.HasWindow {
			out["window_id"] = res.Window.ID
			out["window_title"] = res.Window.Title
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	} else {
		fmt.Printf("outcome: %s\n", res.Outcome)
		if res.HasWindow {
			fmt.Printf("window:  %s (%s)\n", res.Window.Title, res.Window.ID)
		}
		if res.Process != nil {
			fmt.Printf("spawned: pid %d\n", res.Process.Pid())
		}
	}
	if res.Outcome == session.OutcomeNotFound {
		os.Exit(1)
	}
}

func handleClose(args []string) {
	fs := flag.NewFlagSet("close", flag.ExitOnError)
	force := fs.Bool("force", false, "escalate to forced kills")
	timeout := fs.Duration("timeout", 0, "per-stage wait (default from config)")
	debug := fs.Bool("debug", false, "debug logging")
	_ = fs.Parse(args)

	a, err := setup(false, *debug)
	if err != nil {
		fatal(err)
	}
	defer a.shutdown()

	to := a.cfg.Editor.GetTimeout()
	if *timeout > 0 {
		to = *timeout
	}
	doForce := *force || a.cfg.Editor.ForceClose

	ctx, cancel := signalContext()
	defer cancel()

	if a.term.Close(ctx, winctl.Window{}, false, nil, to, doForce) {
		fmt.Println("closed")
		return
	}
	fmt.Println("not confirmed closed")
	os.Exit(1)
}

func handleWindows(args []string) {
	fs := flag.NewFlagSet("windows", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "JSON output")
	_ = fs.Parse(args)

	a, err := setup(false, false)
	if err != nil {
		fatal(err)
	}
	defer a.shutdown()

	if !a.dir.Available() {
		fmt.Fprintln(os.Stderr, "window introspection unavailable on this host")
		os.Exit(1)
	}
	ws, err := a.dir.List()
	if err != nil {
		fatal(err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ws)
		return
	}
	fmt.Printf("%-*s %-*s %s\n", tableColID, "ID", tableColClass, "CLASS", "TITLE")
	for _, w := range ws {
		title := w.Title
		if len(title) > tableColTitle {
			title = title[:tableColTitle-1] + "…"
		}
		fmt.Printf("%-*s %-*s %s\n", tableColID, w.ID, tableColClass, w.Class, title)
	}
}

func handleHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("n", 20, "number of runs to show")
	jsonOut := fs.Bool("json", false, "JSON output")
	_ = fs.Parse(args)

	a, err := setup(true, false)
	if err != nil {
		fatal(err)
	}
	defer a.shutdown()

	runs, err := a.db.RecentRuns(*limit)
	if err != nil {
		fatal(err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(runs)
		return
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}
	for _, r := range runs {
		status := r.Outcome
		if r.Err != "" {
			status = "error: " + r.Err
		}
		fmt.Printf("%s  %-6s %-9s %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Kind, status, r.Detail)
	}
}

func handleWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	debug := fs.Bool("debug", false, "debug logging")
	_ = fs.Parse(args)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "watch needs an interactive terminal")
		os.Exit(1)
	}

	a, err := setup(true, *debug)
	if err != nil {
		fatal(err)
	}
	defer a.shutdown()

	if isDark, err := dark.IsDarkMode(); err == nil && !isDark {
		ui.InitTheme("light")
	}

	ctx, cancel := signalContext()
	defer cancel()

	themes := ui.NewThemeWatcher(ctx)
	if themes != nil {
		defer themes.Close()
	}

	model := ui.NewModel(a.dir, a.db, a.cfg.Editor.GetMarker(), themes)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

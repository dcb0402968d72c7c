package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/YordanOpenShield/pc-activity-simulator/internal/logging"
)

// Watcher reloads the config file when it changes on disk and delivers the
// parsed result on a channel. Editors often write via rename, so the watch
// is on the directory rather than the file itself.
type Watcher struct {
	dir     string
	fw      *fsnotify.Watcher
	updates chan *UserConfig
	stopCh  chan struct{}
	once    sync.Once
	log     *slog.Logger

	// debounce collapses the write bursts editors produce into one reload
	debounce time.Duration
}

// NewWatcher starts watching dir for config file changes.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:      dir,
		fw:       fw,
		updates:  make(chan *UserConfig, 1),
		stopCh:   make(chan struct{}),
		log:      logging.ForComponent(logging.CompConfig),
		debounce: 100 * time.Millisecond,
	}
	go w.loop()
	return w, nil
}

// Updates returns the channel of freshly reloaded configs.
func (w *Watcher) Updates() <-chan *UserConfig {
	return w.updates
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.fw.Close()
	})
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != FileName {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.dir)
	if err != nil {
		// A half-written file parses as garbage; keep the old config.
		w.log.Warn("config reload failed", "error", err)
		return
	}
	w.log.Info("config reloaded", "path", filepath.Join(w.dir, FileName))
	select {
	case w.updates <- cfg:
	default:
		// Receiver hasn't drained the previous update; drop it and
		// deliver the newest instead.
		select {
		case <-w.updates:
		default:
		}
		w.updates <- cfg
	}
}

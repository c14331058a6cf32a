package replay

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mboven/canvass-replay/internal/util"
)

// DatasetWatcher watches the data directory and signals when batch files
// change, so a running replay can pick up a re-exported dataset without a
// restart. Bursts of writes are debounced into a single signal.
type DatasetWatcher struct {
	watcher  *fsnotify.Watcher
	events   chan struct{}
	stop     chan struct{}
	debounce time.Duration
}

// NewDatasetWatcher starts watching the given directory.
func NewDatasetWatcher(dataDir string) (*DatasetWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset watcher: %w", err)
	}
	if err := fsWatcher.Add(dataDir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dataDir, err)
	}

	dw := &DatasetWatcher{
		watcher:  fsWatcher,
		events:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
		debounce: 500 * time.Millisecond,
	}
	go dw.run()
	return dw, nil
}

// Events delivers one signal per settled burst of dataset changes.
func (dw *DatasetWatcher) Events() <-chan struct{} {
	return dw.events
}

// Close stops the watcher.
func (dw *DatasetWatcher) Close() error {
	close(dw.stop)
	return dw.watcher.Close()
}

func (dw *DatasetWatcher) run() {
	var pending *time.Timer
	var pendingC <-chan time.Time

	for {
		select {
		case <-dw.stop:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			util.LogDebug(fmt.Sprintf("Dataset change detected: %s (%s)", event.Name, event.Op))
			if pending == nil {
				pending = time.NewTimer(dw.debounce)
				pendingC = pending.C
			} else {
				pending.Reset(dw.debounce)
			}

		case <-pendingC:
			pending = nil
			pendingC = nil
			select {
			case dw.events <- struct{}{}:
			default:
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			util.LogWarn(fmt.Sprintf("Dataset watcher error: %v", err))
		}
	}
}

package scene

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce drops repeat events for one file; editors often write twice.
const debounce = 100 * time.Millisecond

// Change is one edited file and the scenes that must be rebuilt for it.
type Change struct {
	File   string
	Scenes []string
}

// Watcher turns file events under a scene directory into Changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	Changes chan Change
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Changes: make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. Changes and Errors are closed once the watch
// loop has exited.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Changes)
		close(w.Errors)
		close(w.done)
	}()

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			file := filepath.Base(event.Name)
			now := time.Now()
			if t, ok := last[file]; ok && now.Sub(t) < debounce {
				continue
			}
			last[file] = now

			scenes := AffectedScenes(file)
			if len(scenes) == 0 {
				continue
			}
			select {
			case w.Changes <- Change{File: file, Scenes: scenes}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// AffectedScenes names the scenes built from file. A scene file affects
// only itself; a script affects every known scene whose script_file points
// at it. Other files affect nothing.
func AffectedScenes(file string) []string {
	base := filepath.Base(file)
	switch {
	case isSpecFile(base):
		return []string{sceneName(base)}
	case isScriptFile(base):
		var scenes []string
		for _, name := range List() {
			spec, err := LoadScene(name)
			if err != nil || spec.ScriptFile == "" {
				continue
			}
			if filepath.Base(spec.ScriptFile) == base {
				scenes = append(scenes, sceneName(name))
			}
		}
		return slices.Compact(scenes)
	}
	return nil
}

// sceneName strips the extension from a scene file name.
func sceneName(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}

// Package config loads the on-disk JSON document a Journey is configured
// from — the root environment plus default journey options and storage
// locations — and optionally hot-reloads it, grounded on
// core.Engine.WatchFile/OnChange
// (_examples/hazyhaar-GoClode/internal/core/db.go): the same
// fsnotify.NewWatcher + goroutine-forwarding-to-a-callback shape, narrowed
// from "watch + hot-swap mid-session config" (inapplicable: a running
// Journey's root environment is owned by its caller, not reloaded under
// it) to "watch + notify a registered callback," which is the subset of
// the teacher's behavior this package actually needs.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fsnotify/fsnotify"

	"github.com/sephiram591/journeymaps/internal/jpath"
	"github.com/sephiram591/journeymaps/internal/param"
)

// Config is a loaded configuration document: where results and the cache
// database live, the default PathOptions a CLI run starts from, and the
// root environment tree built from the document's "environment" object.
type Config struct {
	ResultDir   string
	CacheDBPath string
	CacheSize   int
	Options     jpath.PathOptions
	Root        *param.Dict
}

type document struct {
	ResultDir   string         `json:"result_dir"`
	CacheDBPath string         `json:"cache_db_path"`
	CacheSize   int            `json:"cache_db_meta_size"`
	Options     optionsDoc     `json:"options"`
	Environment map[string]any `json:"environment"`
}

type optionsDoc struct {
	ForceRunToDepth         int   `json:"force_run_to_depth"`
	DisableSavingAndLoading bool  `json:"disable_saving_and_loading"`
	Plot                    *bool `json:"plot"`
	Verbose                 bool  `json:"verbose"`
	BatchTqdm               bool  `json:"batch_tqdm"`
}

// Load reads and parses the JSON document at path into a Config. Numbers
// in the "environment" object are decoded with json.Number so integer and
// floating-point parameters keep their distinct canonical SQL type (§4.2's
// int/float cast split) instead of collapsing to float64 the way a plain
// map[string]any decode would.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	opts := jpath.DefaultPathOptions()
	opts.ForceRunToDepth = doc.Options.ForceRunToDepth
	opts.DisableSavingAndLoading = doc.Options.DisableSavingAndLoading
	opts.Verbose = doc.Options.Verbose
	opts.BatchTqdm = doc.Options.BatchTqdm
	if doc.Options.Plot != nil {
		opts.Plot = *doc.Options.Plot
	}

	root := param.NewDict()
	for _, key := range sortedKeys(doc.Environment) {
		n, err := buildNode(doc.Environment[key])
		if err != nil {
			return nil, fmt.Errorf("config: environment.%s: %w", key, err)
		}
		if err := root.Set(key, n); err != nil {
			return nil, fmt.Errorf("config: environment.%s: %w", key, err)
		}
	}

	cacheDBPath := doc.CacheDBPath
	if cacheDBPath == "" {
		cacheDBPath = "journeymaps.db"
	}
	resultDir := doc.ResultDir
	if resultDir == "" {
		resultDir = "results"
	}

	return &Config{
		ResultDir:   resultDir,
		CacheDBPath: cacheDBPath,
		CacheSize:   doc.CacheSize,
		Options:     opts,
		Root:        root,
	}, nil
}

// buildNode converts a decoded JSON value into a param.Node: objects
// become Dicts, and scalars become typed Values (so the tree's dtype is
// already pinned at load time and SQL projection never has to guess).
// Arrays have no canonical SQL cast under spec.md §4.2, so they're kept as
// an untyped Value — usable as a Buffer argument, but an error if ever
// asked to project to SQL directly.
func buildNode(v any) (param.Node, error) {
	switch t := v.(type) {
	case map[string]any:
		d := param.NewDict()
		for _, key := range sortedKeys(t) {
			child, err := buildNode(t[key])
			if err != nil {
				return nil, err
			}
			if err := d.Set(key, child); err != nil {
				return nil, err
			}
		}
		return d, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return param.NewInt(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return param.NewFloat(f), nil
	case string:
		return param.NewString(t), nil
	case bool:
		return param.NewBool(t), nil
	case nil:
		return param.NewValue(nil), nil
	case []any:
		return param.NewValue(t), nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type %T", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Watch watches path for writes and invokes callback on each one, in its
// own goroutine, until the returned stop func is called. Grounded on
// Engine.WatchFile's fsnotify.NewWatcher + forwarding-goroutine shape.
func Watch(path string, callback func()) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					callback()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { close(done) }, nil
}

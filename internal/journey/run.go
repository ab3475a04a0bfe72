package journey

import (
	"context"
	"fmt"

	"github.com/sephiram591/journeymaps/internal/jpath"
	"github.com/sephiram591/journeymaps/internal/param"
)

// Run executes the path named name against a fresh deep copy of the
// journey's root environment, implementing the full load/run/save cycle
// of spec.md §4.7 as the top-level (is_root=true) invocation.
func (j *Journey) Run(ctx context.Context, name string, opts jpath.PathOptions) (*jpath.Result, error) {
	path, ok := j.paths[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPath, name)
	}
	env := param.Clone(j.root).(*param.Dict)
	result, _, err := j.run(ctx, env, path, opts, true)
	return result, err
}

// run executes path against env (already the correctly-scoped deep copy
// for this node in the recursion), returning its own Result and its
// subpaths' results for the caller's (or a plot hook's) use.
func (j *Journey) run(ctx context.Context, env *param.Dict, path jpath.Path, opts jpath.PathOptions, isRoot bool) (*jpath.Result, map[string]*jpath.SubpathResult, error) {
	if err := env.InitRun(isRoot, env); err != nil {
		return nil, nil, err
	}
	env.ResetUsage()

	var cached *jpath.Result
	hit := false
	if opts.ForceRunToDepth <= 0 && !opts.DisableSavingAndLoading {
		var err error
		cached, hit, err = j.load(ctx, env, path)
		if err != nil {
			return nil, nil, err
		}
		if hit && !isRoot {
			return cached, nil, nil
		}
	}

	subOpts := opts
	if subOpts.ForceRunToDepth > 0 {
		subOpts.ForceRunToDepth--
	}
	subResults, err := j.runSubpaths(ctx, env, path, subOpts)
	if err != nil {
		return nil, nil, err
	}

	var result *jpath.Result
	if hit {
		result = cached
	} else {
		result, err = j.runPath(path, env, subResults, opts.Verbose)
		if err != nil {
			return nil, nil, err
		}
		if !opts.DisableSavingAndLoading {
			if err := j.save(ctx, env, path, result, opts.Verbose); err != nil {
				return nil, nil, err
			}
		}
	}

	if opts.Plot {
		if pp, ok := path.(jpath.PlottablePath); ok {
			if err := pp.Plot(result, subResults); err != nil {
				return nil, nil, err
			}
		}
	}

	return result, subResults, nil
}

// runPath brackets path.Run with env's lock — the "execution wrapper"
// spec.md §4.3 describes (lock, call the path's own computation, unlock
// on every exit), kept here because Journey is the only thing holding the
// *param.Dict reference at the point the lock must bracket this call (the
// subpath recursion above operates on separate deep-copied environments,
// not env itself, so it falls outside the bracket).
func (j *Journey) runPath(path jpath.Path, env *param.Dict, subResults map[string]*jpath.SubpathResult, verbose bool) (result *jpath.Result, err error) {
	env.Lock()
	defer env.Unlock()
	return path.Run(env, subResults, verbose)
}

// runSubpaths resolves and runs every subpath path depends on, merging
// batch/single usage back into env per spec.md §4.7.2.
func (j *Journey) runSubpaths(ctx context.Context, env *param.Dict, path jpath.Path, opts jpath.PathOptions) (map[string]*jpath.SubpathResult, error) {
	results := make(map[string]*jpath.SubpathResult)

	for _, subName := range path.Subpaths() {
		subPath, ok := j.paths[subName]
		if !ok {
			return nil, &MissingSubpathError{Path: path.Name(), Missing: subName}
		}

		b, err := path.GetBatches(subName, env, results)
		if err != nil {
			return nil, err
		}

		if b == nil {
			subEnv := param.Clone(env).(*param.Dict)
			r, _, err := j.run(ctx, subEnv, subPath, opts, false)
			if err != nil {
				return nil, err
			}
			if err := env.MergeUsage(subEnv); err != nil {
				return nil, err
			}
			results[subName] = &jpath.SubpathResult{Single: r}
			continue
		}

		byBatch := make(map[string]*jpath.Result, b.Len())
		for i, id := range b.Entries() {
			overlay, _ := b.Overlay(id)
			subEnv := param.Clone(env).(*param.Dict)
			overlayCopy := param.Clone(overlay).(*param.Dict)
			if err := overlayCopy.InitRun(true, subEnv); err != nil {
				return nil, err
			}
			subEnv.Replace(overlayCopy)

			r, _, err := j.run(ctx, subEnv, subPath, opts, false)
			if err != nil {
				return nil, err
			}
			byBatch[id] = r

			if i == 0 {
				// The overlay's own keys must not count toward the
				// parent's usage — only merge what the parent already
				// shared with subEnv before the overlay was spliced in.
				for _, k := range overlayCopy.Keys() {
					if child, ok := subEnv.Child(k); ok {
						child.ResetUsage()
					}
				}
				if err := env.MergeUsage(subEnv); err != nil {
					return nil, err
				}
			}
		}
		results[subName] = &jpath.SubpathResult{Batched: true, ByBatch: byBatch}
	}

	return results, nil
}

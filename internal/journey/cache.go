package journey

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sephiram591/journeymaps/internal/cachestore"
	"github.com/sephiram591/journeymaps/internal/jpath"
	"github.com/sephiram591/journeymaps/internal/param"
)

// load attempts to satisfy path from the cache store, implementing
// spec.md §4.7.3. A save_datetime path never consults the cache (§9 Open
// Question (b)): every run of such a path is a fresh row, so there is no
// single "current" result to replay.
func (j *Journey) load(ctx context.Context, env *param.Dict, path jpath.Path) (*jpath.Result, bool, error) {
	if path.SaveDatetime() {
		j.logf("load skip: %s is save_datetime, never cached", path.Name())
		return nil, false, nil
	}

	version, ok, err := j.store.CurrentVersion(ctx, path.Name())
	if err != nil {
		return nil, false, err
	}
	if !ok {
		j.logf("load miss: %s has no current_version", path.Name())
		j.logCacheEvent(ctx, path.Name(), cachestore.EventMiss, "no current_version")
		return nil, false, nil
	}

	envSchemaJSON, fileSchemaJSON, ok, err := j.store.PathVersionSchema(ctx, path.Name(), version)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		j.logf("load miss: %s version %d has no schema", path.Name(), version)
		j.logCacheEvent(ctx, path.Name(), cachestore.EventMiss, "no schema for version")
		return nil, false, nil
	}

	var envSchema param.SQLSchema
	if err := json.Unmarshal([]byte(envSchemaJSON), &envSchema); err != nil {
		return nil, false, err
	}

	// Probe only the dotted leaves envSchema actually names, not the whole
	// tree: a full projection would also cast every other unused, visible
	// param, and any of those that isn't SQL-castable (e.g. a raw slice)
	// would turn an ordinary miss into a hard error. Any key the probe
	// can't resolve (the tree's shape has since diverged) is a miss.
	tempEnv := make(map[string]any, len(envSchema))
	for key := range envSchema {
		v, ok, err := resolveSchemaLeaf(env, key)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			j.logf("load miss: %s environment has diverged from schema (missing %q)", path.Name(), key)
			j.logCacheEvent(ctx, path.Name(), cachestore.EventMiss, "environment diverged: missing "+key)
			return nil, false, nil
		}
		tempEnv[key] = v
	}

	environment, err := canonicalJSON(tempEnv)
	if err != nil {
		return nil, false, err
	}

	sess, err := j.store.NewSession(ctx)
	if err != nil {
		return nil, false, err
	}
	defer sess.Rollback(ctx)

	row, found, err := sess.SelectResult(ctx, path.Name(), version, environment)
	if err != nil {
		return nil, false, err
	}
	if !found {
		env.ResetUsage()
		j.logf("load miss: %s no result row for this environment", path.Name())
		j.logCacheEvent(ctx, path.Name(), cachestore.EventMiss, "no matching result row")
		return nil, false, nil
	}
	j.logf("load hit: %s version %d", path.Name(), version)
	j.logCacheEvent(ctx, path.Name(), cachestore.EventHit, "version="+strconv.Itoa(version))

	result := jpath.NewResult()
	if row.SQL != nil {
		// Decode numbers as json.Number so whole numbers come back as int64
		// (what paths produce) rather than float64.
		dec := json.NewDecoder(strings.NewReader(*row.SQL))
		dec.UseNumber()
		if err := dec.Decode(&result.SQL); err != nil {
			return nil, false, err
		}
		for k, v := range result.SQL {
			if n, ok := v.(json.Number); ok {
				if i, err := n.Int64(); err == nil {
					result.SQL[k] = i
				} else if f, err := n.Float64(); err == nil {
					result.SQL[k] = f
				}
			}
		}
	}
	var fileSchema jpath.FileSchema
	if fileSchemaJSON != nil {
		if err := json.Unmarshal([]byte(*fileSchemaJSON), &fileSchema); err != nil {
			return nil, false, err
		}
	}
	if row.FilePath != nil {
		if err := result.FromFile(j.registry, *row.FilePath, fileSchema); err != nil {
			return nil, false, err
		}
	}
	return result, true, nil
}

// save writes result through to the cache store, implementing spec.md
// §4.7.4: project env_sql/env_schema, fingerprint to a file path, locate
// or allocate a PathVersion, then upsert (or, for save_datetime paths,
// always insert) the result row.
func (j *Journey) save(ctx context.Context, env *param.Dict, path jpath.Path, result *jpath.Result, verbose bool) error {
	envSQLAny, err := env.SQLData(param.SQLOptions{ShowUnused: false, ShowInvisible: false})
	if err != nil {
		return err
	}
	envSQL, _ := envSQLAny.(map[string]any)

	envSchemaAny, err := env.SQLData(param.SQLOptions{ShowUnused: false, ShowInvisible: false, ReturnSchema: true})
	if err != nil {
		return err
	}
	envSchemaMap, _ := envSchemaAny.(map[string]any)
	envSchema := make(param.SQLSchema, len(envSchemaMap))
	for k, v := range envSchemaMap {
		tag, _ := v.(string)
		envSchema[k] = tag
	}

	fp, err := fingerprint(envSQL)
	if err != nil {
		return err
	}
	filePath := filepath.Join(j.resultDir, path.Name(), fp)

	fileSchema, err := result.ToFile(j.registry, filePath, verbose, j.logf)
	if err != nil {
		return err
	}

	sess, err := j.store.NewSession(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			sess.Rollback(ctx)
		}
	}()

	if err := sess.UpsertPath(ctx, path.Name()); err != nil {
		return err
	}

	envSchemaJSON, err := json.Marshal(envSchema)
	if err != nil {
		return err
	}
	var fileSchemaJSONPtr *string
	if fileSchema != nil {
		b, err := json.Marshal(fileSchema)
		if err != nil {
			return err
		}
		s := string(b)
		fileSchemaJSONPtr = &s
	}

	version, found, err := sess.FindPathVersion(ctx, path.Name(), string(envSchemaJSON), fileSchemaJSONPtr)
	if err != nil {
		return err
	}
	versionBumped := false
	if !found {
		maxV, hasAny, err := sess.MaxVersion(ctx, path.Name())
		if err != nil {
			return err
		}
		version = 0
		if hasAny {
			version = maxV + 1
		}
		if err := sess.InsertPathVersion(ctx, path.Name(), version, path.Changelog(), string(envSchemaJSON), fileSchemaJSONPtr); err != nil {
			return err
		}
		versionBumped = true
	}
	if err := sess.SetCurrentVersion(ctx, path.Name(), version); err != nil {
		return err
	}

	environment, err := canonicalJSON(envSQL)
	if err != nil {
		return err
	}

	var sqlJSONPtr *string
	if len(result.SQL) > 0 {
		b, err := json.Marshal(result.SQL)
		if err != nil {
			return err
		}
		s := string(b)
		sqlJSONPtr = &s
	}
	var filePathPtr *string
	if fileSchema != nil {
		filePathPtr = &filePath
	}

	row := cachestore.ResultRow{
		PathName:    path.Name(),
		PathVersion: version,
		Environment: environment,
		SQL:         sqlJSONPtr,
		FilePath:    filePathPtr,
	}

	if path.SaveDatetime() {
		row.ID = uuid.New().String()
		now := time.Now().Unix()
		row.CreatedAt = &now
		if err := sess.InsertResult(ctx, row); err != nil {
			return err
		}
		if err := sess.LogEvent(ctx, path.Name(), cachestore.EventSave, "new row (save_datetime)"); err != nil {
			return err
		}
	} else {
		row.ID = idempotentResultID(path.Name(), version, environment)
		if err := sess.UpsertResult(ctx, row); err != nil {
			return err
		}
		if err := sess.LogEvent(ctx, path.Name(), cachestore.EventSave, "upsert"); err != nil {
			return err
		}
	}

	if versionBumped {
		if err := sess.LogEvent(ctx, path.Name(), cachestore.EventVersionBump, "version="+strconv.Itoa(version)); err != nil {
			return err
		}
	}

	if err := sess.Commit(ctx); err != nil {
		return err
	}
	committed = true
	j.store.Invalidate(path.Name())
	j.logf("saved %s version %d (%d sql keys, file_schema=%v)", path.Name(), version, len(result.SQL), fileSchema != nil)
	return nil
}

// resolveSchemaLeaf walks env by dottedKey's "."-separated segments and
// returns the SQL-cast value at that leaf, without touching any sibling
// the schema didn't name — spec.md §4.7.3 step 3 reads exactly the keys
// env_schema recorded, not the whole tree. ok is false when the path
// can't be walked (a Dict segment is missing, or an intermediate node is
// no longer shaped like a Dict): that's a miss, not an error. Invisible
// wrappers and already-resolved Refers are transparent to the walk, the
// same way Dict.SQLData's own projection treats them.
func resolveSchemaLeaf(env *param.Dict, dottedKey string) (any, bool, error) {
	parts := strings.Split(dottedKey, ".")
	var cur param.Node = env
	for i, part := range parts {
		cur = unwrapForTraversal(cur)
		d, ok := cur.(*param.Dict)
		if !ok {
			// cur flattens its own subtree in one SQLData call (a
			// Buffer/XBuffer/YBuffer): the rest of dottedKey names a key
			// inside that flattened map, not a further Dict.Child step.
			data, err := cur.SQLData(param.SQLOptions{ShowUnused: true, ShowInvisible: false})
			if err != nil {
				return nil, false, err
			}
			m, ok := data.(map[string]any)
			if !ok {
				return nil, false, nil
			}
			v, ok := m[strings.Join(parts[i:], ".")]
			return v, ok, nil
		}
		child, ok := d.Child(part)
		if !ok {
			return nil, false, nil
		}
		cur = child
	}

	cur = unwrapForTraversal(cur)
	val, err := cur.SQLData(param.SQLOptions{ShowUnused: true, ShowInvisible: false})
	if err != nil {
		return nil, false, err
	}
	if _, ok := val.(map[string]any); ok {
		// dottedKey ran out before reaching an actual leaf.
		return nil, false, nil
	}
	return val, true, nil
}

// unwrapForTraversal strips wrappers that are transparent to structural
// navigation: Invisible always delegates to its inner node, and a Refer
// (already resolved by the InitRun that precedes every load) delegates to
// its resolved target.
func unwrapForTraversal(n param.Node) param.Node {
	for {
		switch t := n.(type) {
		case *param.Invisible:
			n = t.Inner()
		case *param.Refer:
			if t.Resolved() == nil {
				return n
			}
			n = t.Resolved()
		default:
			return n
		}
	}
}

// logCacheEvent records a run_log row in its own committed transaction,
// independent of whatever session (if any) a caller already has open — a
// load's read-only transaction is always rolled back, so a hit/miss event
// needs a session of its own to actually persist. Best-effort: a logging
// failure never fails the load/save it annotates.
func (j *Journey) logCacheEvent(ctx context.Context, name, event, detail string) {
	sess, err := j.store.NewSession(ctx)
	if err != nil {
		return
	}
	defer sess.Rollback(ctx)
	if err := sess.LogEvent(ctx, name, event, detail); err != nil {
		return
	}
	sess.Commit(ctx)
}

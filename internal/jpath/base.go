package jpath

import (
	"github.com/sephiram591/journeymaps/internal/batch"
	"github.com/sephiram591/journeymaps/internal/param"
)

// BasePath supplies the declarative half of Path (name, changelog,
// save_datetime, subpath lists) and a default GetBatches that always
// requests a single run, so a concrete path only needs to embed BasePath
// and implement Run — the same embed-the-default shape as the teacher's
// GenericProvider embedding CerebrasProvider for its OpenAI-compatible
// behavior (internal/providers/registry.go).
type BasePath struct {
	PathName        string
	PathChangelog   string
	PathSaveDT      bool
	PathSubpaths    []string
	PathBatchedSubs map[string]bool
}

// NewBasePath constructs a BasePath. batchedSubpaths may be nil (no
// subpath is batched).
func NewBasePath(name, changelog string, saveDatetime bool, subpaths []string, batchedSubpaths map[string]bool) BasePath {
	if batchedSubpaths == nil {
		batchedSubpaths = make(map[string]bool)
	}
	return BasePath{
		PathName:        name,
		PathChangelog:   changelog,
		PathSaveDT:      saveDatetime,
		PathSubpaths:    subpaths,
		PathBatchedSubs: batchedSubpaths,
	}
}

func (b BasePath) Name() string                    { return b.PathName }
func (b BasePath) Changelog() string                { return b.PathChangelog }
func (b BasePath) SaveDatetime() bool               { return b.PathSaveDT }
func (b BasePath) Subpaths() []string               { return b.PathSubpaths }
func (b BasePath) BatchedSubpaths() map[string]bool { return b.PathBatchedSubs }

// GetBatches defaults to "run singly" for every subpath; paths that batch
// a subpath override this method on their own embedding type.
func (b BasePath) GetBatches(subpathName string, env *param.Dict, previous map[string]*SubpathResult) (*batch.Batch, error) {
	return nil, nil
}

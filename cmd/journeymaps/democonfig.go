package main

import (
	"github.com/sephiram591/journeymaps/internal/config"
	"github.com/sephiram591/journeymaps/internal/jpath"
	"github.com/sephiram591/journeymaps/internal/param"
)

// demoConfig builds the fallback configuration used when no --config
// flag is given: a root environment with the values the demo package's
// paths read (x, z), stored under ./.journeymaps/ the way the teacher
// auto-generates its database under ./.goclode/ when --db is omitted.
func demoConfig() *config.Config {
	root := param.NewDict()
	root.Set("x", param.NewInt(3))
	root.Set("z", param.NewInt(4))

	return &config.Config{
		ResultDir:   ".journeymaps/results",
		CacheDBPath: ".journeymaps/cache.db",
		CacheSize:   256,
		Options:     jpath.DefaultPathOptions(),
		Root:        root,
	}
}

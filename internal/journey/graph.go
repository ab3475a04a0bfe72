package journey

import (
	"sort"

	"github.com/sephiram591/journeymaps/internal/jpath"
)

// ValidatePaths checks a candidate path set for two defects before any of
// them can run (spec.md §4.1): a subpath name nobody registered, and a
// cycle among subpath dependencies. Keys are walked in sorted order so a
// reported cycle is deterministic across runs.
func ValidatePaths(paths map[string]jpath.Path) error {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, sub := range paths[name].Subpaths() {
			if _, ok := paths[sub]; !ok {
				return &MissingSubpathError{Path: name, Missing: sub}
			}
		}
	}

	state := make(map[string]int, len(paths)) // 0=unvisited, 1=in-stack, 2=done
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case 2:
			return nil
		case 1:
			cycle := append([]string(nil), stack...)
			cycle = append(cycle, name)
			start := 0
			for i, n := range cycle {
				if n == name {
					start = i
					break
				}
			}
			return &CircularSubpathError{Cycle: cycle[start:]}
		}

		state[name] = 1
		stack = append(stack, name)
		for _, sub := range paths[name].Subpaths() {
			if err := visit(sub); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = 2
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

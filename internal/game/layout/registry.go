package layout

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

//go:embed layouts/*.lay
var files embed.FS

const ext = ".lay"

// Names returns the bundled layout names in sorted order
func Names() []string {
	entries, err := files.ReadDir("layouts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ext) {
			names = append(names, strings.TrimSuffix(e.Name(), ext))
		}
	}
	sort.Strings(names)
	return names
}

// Get parses the bundled layout called name. Every call returns a fresh
// Layout.
func Get(name string) (*Layout, error) {
	data, err := files.ReadFile(path.Join("layouts", name+ext))
	if err != nil || strings.ContainsAny(name, "/.") {
		return nil, mdp.UnknownNameError("layout", name)
	}
	return Parse(name, string(data))
}

// MustGet is Get for layouts known to be bundled. It panics otherwise.
func MustGet(name string) *Layout {
	l, err := Get(name)
	if err != nil {
		panic(err)
	}
	return l
}

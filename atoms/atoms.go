// Package atoms holds the catalog of automation scripts injected into pages.
// Bodies are opaque: each is a function expression the script bridge wraps
// and calls with positional arguments.
package atoms

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Name identifies an atom in the catalog.
type Name string

// Atoms used by the element resolver.
const (
	FindElement  Name = "FIND_ELEMENT"
	FindElements Name = "FIND_ELEMENTS"
	Criteria     Name = "CRITERIA"
)

const versionFile = "VERSION"

// ErrUnknownAtom is returned by Get for names missing from the catalog.
var ErrUnknownAtom = errors.New("unknown atom")

//go:embed js
var embedded embed.FS

var files = map[Name]string{
	FindElement:  "find_element.js",
	FindElements: "find_elements.js",
	Criteria:     "criteria.js",
}

// Catalog is an immutable set of atom bodies.
type Catalog struct {
	version string
	bodies  map[Name]string
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c := &Catalog{bodies: make(map[Name]string, len(files))}
	for name, file := range files {
		data, err := embedded.ReadFile(path.Join("js", file))
		if err != nil {
			panic(fmt.Sprintf("embedded atom %s: %v", name, err))
		}
		c.bodies[name] = strings.TrimSpace(string(data))
	}
	if data, err := embedded.ReadFile(path.Join("js", versionFile)); err == nil {
		c.version = strings.TrimSpace(string(data))
	}
	return c
}

// Load returns the default catalog with any atom file found in dir layered
// on top. An empty dir yields the defaults.
func Load(fs afero.Fs, dir string) (*Catalog, error) {
	c := Default()
	if dir == "" {
		return c, nil
	}
	info, err := fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("atoms directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("atoms directory %q is not a directory", dir)
	}

	for name, file := range files {
		data, err := afero.ReadFile(fs, filepath.Join(dir, file))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading atom %s: %w", name, err)
		}
		body := strings.TrimSpace(string(data))
		if body == "" {
			return nil, fmt.Errorf("atom %s in %q is empty", name, dir)
		}
		c.bodies[name] = body
	}
	data, err := afero.ReadFile(fs, filepath.Join(dir, versionFile))
	switch {
	case err == nil:
		c.version = strings.TrimSpace(string(data))
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading atoms version: %w", err)
	}
	return c, nil
}

// Get returns the body of the named atom.
func (c *Catalog) Get(name Name) (string, error) {
	body, ok := c.bodies[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAtom, name)
	}
	return body, nil
}

// Version reports the version string of the catalog.
func (c *Catalog) Version() string {
	return c.version
}

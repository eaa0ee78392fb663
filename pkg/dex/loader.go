package dex

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// manifest is the on-disk YAML shape of a method table.
type manifest struct {
	Classes []manifestClass `yaml:"classes"`
}

type manifestClass struct {
	Name    string           `yaml:"name"`
	Methods []manifestMethod `yaml:"methods"`
}

type manifestMethod struct {
	Name   string   `yaml:"name"`
	Shorty string   `yaml:"shorty"`
	Flags  []string `yaml:"flags"`
}

// flagValue maps a manifest flag name to its access-flag bit.
func flagValue(name string) (uint32, error) {
	switch name {
	case "public":
		return AccPublic, nil
	case "static":
		return AccStatic, nil
	case "final":
		return AccFinal, nil
	case "native":
		return AccNative, nil
	}
	return 0, fmt.Errorf("unknown access flag %q", name)
}

// Loader resolves method tables by name.
type Loader interface {
	LoadTable(name string) (*Table, error)
}

// DirLoader loads method-table manifests named <name>.yaml from a
// directory, delegating to the parent first and caching parsed tables.
type DirLoader struct {
	Dir    string
	Parent Loader
	Cache  map[string]*Table
}

// NewDirLoader creates a new DirLoader.
func NewDirLoader(dir string, parent Loader) *DirLoader {
	return &DirLoader{
		Dir:    dir,
		Parent: parent,
		Cache:  make(map[string]*Table),
	}
}

func (l *DirLoader) LoadTable(name string) (*Table, error) {
	if t, ok := l.Cache[name]; ok {
		return t, nil
	}
	if l.Parent != nil {
		if t, err := l.Parent.LoadTable(name); err == nil {
			return t, nil
		}
	}
	t, err := LoadTable(filepath.Join(l.Dir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("table: %s not found: %w", name, err)
	}
	l.Cache[name] = t
	return t, nil
}

// LoadTable reads a YAML method-table manifest and builds a Table.
// Every shorty in the manifest is validated before the table is returned.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: opening %s: %w", path, err)
	}
	defer f.Close()

	var man manifest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&man); err != nil {
		return nil, fmt.Errorf("table: decoding %s: %w", path, err)
	}

	var methods []Method
	for _, cls := range man.Classes {
		if cls.Name == "" {
			return nil, fmt.Errorf("table: class with empty name in %s", path)
		}
		for _, mm := range cls.Methods {
			var flags uint32
			for _, fl := range mm.Flags {
				bit, err := flagValue(fl)
				if err != nil {
					return nil, fmt.Errorf("table: method %s.%s: %w", cls.Name, mm.Name, err)
				}
				flags |= bit
			}
			if _, err := ParseShorty(mm.Shorty); err != nil {
				return nil, fmt.Errorf("table: method %s.%s: %w", cls.Name, mm.Name, err)
			}
			methods = append(methods, Method{
				AccessFlags: flags,
				Class:       cls.Name,
				Name:        mm.Name,
				Shorty:      mm.Shorty,
			})
		}
	}
	return NewTable(methods), nil
}

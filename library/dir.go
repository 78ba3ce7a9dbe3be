package library

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions are tried in order by DirProvider.
var Extensions = []string{".yaml", ".yml", ".json"}

// DirProvider finds entries in files named NAME.yaml (or .yml or
// .json) in a directory.
//
// Files are read on every FindEntry, with '%inline("FILE")'
// replaced by the contents of FILE in the same directory.
type DirProvider struct {
	Dir string
}

func (p *DirProvider) FindEntry(ctx context.Context, name string) (*Entry, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, NotFound
	}
	for _, ext := range Extensions {
		bs, err := ReadFileWithInlines(filepath.Join(p.Dir, name+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		e, err := Parse(bs)
		if err != nil {
			return nil, err
		}
		if e.Name == "" {
			e.Name = name
		}
		return e, nil
	}
	return nil, NotFound
}

// List returns the sorted names of the entries in the directory.
func (p *DirProvider) List(ctx context.Context) ([]string, error) {
	files, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(files))
	acc := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := filepath.Ext(f.Name())
		for _, want := range Extensions {
			if ext == want {
				name := strings.TrimSuffix(f.Name(), ext)
				if !seen[name] {
					seen[name] = true
					acc = append(acc, name)
				}
			}
		}
	}
	sort.Strings(acc)
	return acc, nil
}

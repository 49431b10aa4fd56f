package organizer

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ecufiler/internal/services"
)

// Folder is one vehicle folder in the destination tree.
type Folder struct {
	Make string
	Name string
	Path string
}

// Query filters folders by case-insensitive substring matches on the
// folder name. Every non-empty field must match.
type Query struct {
	Registration string
	Make         string
	Model        string
	ECU          string
}

func (q Query) terms() []string {
	var out []string
	for _, v := range []string{q.Registration, q.Make, q.Model, q.ECU} {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Search lists folders matching the query, ordered by make and then name.
func (o *Organizer) Search(q Query) ([]Folder, error) {
	terms := q.terms()
	if len(terms) == 0 {
		return nil, services.Wrap(services.ErrValidation, "search", "validate query", "at least one search term is required", nil)
	}
	folders, err := o.walk(func(name string) bool {
		lower := strings.ToLower(name)
		for _, term := range terms {
			if !strings.Contains(lower, term) {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Make != folders[j].Make {
			return folders[i].Make < folders[j].Make
		}
		return folders[i].Name < folders[j].Name
	})
	return folders, nil
}

// FindByRegistration lists folders whose name ends with _{registration},
// newest name first.
func (o *Organizer) FindByRegistration(registration string) ([]Folder, error) {
	reg := registrationSegment(registration)
	if reg == "" {
		return nil, nil
	}
	suffix := "_" + reg
	folders, err := o.walk(func(name string) bool {
		return strings.HasSuffix(name, suffix)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name > folders[j].Name })
	return folders, nil
}

// walk visits <destination>/<make>/<folder> directories. A missing
// destination yields no folders.
func (o *Organizer) walk(match func(name string) bool) ([]Folder, error) {
	root := o.cfg.Paths.DestinationDir
	makes, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrTransient, "search", "read destination", root, err)
	}
	var out []Folder
	for _, makeEntry := range makes {
		if !makeEntry.IsDir() {
			continue
		}
		makeDir := filepath.Join(root, makeEntry.Name())
		entries, err := os.ReadDir(makeDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || !match(entry.Name()) {
				continue
			}
			out = append(out, Folder{
				Make: makeEntry.Name(),
				Name: entry.Name(),
				Path: filepath.Join(makeDir, entry.Name()),
			})
		}
	}
	return out, nil
}

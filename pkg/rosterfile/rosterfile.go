// Package rosterfile keeps a roster in a local JSON or YAML file, chosen by extension.
package rosterfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arnavshah/rota-api-go/pkg/models"
	"gopkg.in/yaml.v3"
)

// File is the on-disk roster document
type File struct {
	Employees []models.Employee `json:"employees" yaml:"employees"`
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the roster at path. A missing file is created empty.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		f := &File{}
		return f, f.Save(path)
	}
	if err != nil {
		return nil, err
	}

	f := &File{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, f)
	} else if len(strings.TrimSpace(string(data))) > 0 {
		err = json.Unmarshal(data, f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Save writes the roster, sorted by ID
func (f *File) Save(path string) error {
	f.sort()

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(f)
	} else {
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Upsert adds e or replaces the employee with the same ID
func (f *File) Upsert(e models.Employee) {
	for i := range f.Employees {
		if f.Employees[i].ID == e.ID {
			f.Employees[i] = e
			return
		}
	}
	f.Employees = append(f.Employees, e)
}

// Remove deletes the employee with id and reports whether it existed
func (f *File) Remove(id string) bool {
	for i := range f.Employees {
		if f.Employees[i].ID == id {
			f.Employees = append(f.Employees[:i], f.Employees[i+1:]...)
			return true
		}
	}
	return false
}

// Roster returns the scheduler view of the file
func (f *File) Roster() models.Roster {
	return models.RosterOf(f.Employees)
}

// Names maps employee IDs to display names
func (f *File) Names() map[string]string {
	names := make(map[string]string, len(f.Employees))
	for _, e := range f.Employees {
		names[e.ID] = e.Name
	}
	return names
}

func (f *File) sort() {
	sort.Slice(f.Employees, func(i, j int) bool {
		return f.Employees[i].ID < f.Employees[j].ID
	})
}

package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- Migration: {{.Name}}
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const downTemplate = `-- Migration: {{.Name}} (rollback)
-- Created: {{.Created}}

`

// sequence width matches golang-migrate's -seq -digits 6
const versionDigits = 6

var migrationFileRe = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// Entry is one numbered migration on disk
type Entry struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Complete reports whether both directions exist
func (e Entry) Complete() bool {
	return e.UpPath != "" && e.DownPath != ""
}

// CreatedMigration describes the files written by CreateMigration
type CreatedMigration struct {
	Entry
	Description string
	Created     string
}

// CreateMigration writes an empty up/down pair numbered after the highest
// existing version in dir
func CreateMigration(dir, name, description string) (*CreatedMigration, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", versionDigits, next, slug)
	cm := &CreatedMigration{
		Entry: Entry{
			Version:  next,
			Name:     slug,
			UpPath:   filepath.Join(dir, base+".up.sql"),
			DownPath: filepath.Join(dir, base+".down.sql"),
		},
		Description: strings.TrimSpace(description),
		Created:     time.Now().UTC().Format(time.RFC3339),
	}

	if err := writeTemplate(cm.UpPath, upTemplate, cm); err != nil {
		return nil, err
	}
	if err := writeTemplate(cm.DownPath, downTemplate, cm); err != nil {
		_ = os.Remove(cm.UpPath)
		return nil, err
	}
	return cm, nil
}

func writeTemplate(path, text string, data *CreatedMigration) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeName lower-cases name and joins its alphanumeric runs with "_"
func sanitizeName(name string) string {
	name = strings.ToLower(name)
	// drop punctuation outright so "special!chars" stays one word
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '_'
		}
		return -1
	}, name)
	return strings.Trim(nonSlug.ReplaceAllString(name, "_"), "_")
}

// ListMigrations returns the numbered migrations of dir sorted by version.
// A missing directory yields an empty list.
func ListMigrations(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*Entry)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(f.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			continue
		}
		e, ok := byVersion[uint(v)]
		if !ok {
			e = &Entry{Version: uint(v), Name: match[2]}
			byVersion[uint(v)] = e
		}
		path := filepath.Join(dir, f.Name())
		if match[3] == "up" {
			e.UpPath = path
		} else {
			e.DownPath = path
		}
	}

	entries := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}

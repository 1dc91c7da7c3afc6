package level

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/vovakirdan/gridrunner/internal/core"
	"github.com/vovakirdan/gridrunner/internal/level/formats"
)

// Loader reads level files from a file system. Root is walked recursively.
type Loader struct {
	FS   fs.FS
	Root string
}

// NewLoader creates a loader over a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{FS: os.DirFS(root), Root: "."}
}

// NewFSLoader creates a loader over an arbitrary file system, typically an
// embed.FS holding a game's built-in levels.
func NewFSLoader(fsys fs.FS, root string) *Loader {
	return &Loader{FS: fsys, Root: root}
}

// LoadAll recursively scans and loads all level files.
// Returns levels sorted by ID for deterministic ordering. The first file
// that fails to parse or validate aborts the scan.
func (l *Loader) LoadAll() ([]*GameLevel, error) {
	var levels []*GameLevel

	err := fs.WalkDir(l.FS, l.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		lvl, err := l.LoadFile(p)
		if err != nil {
			return err
		}
		levels = append(levels, lvl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", l.Root, err)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

// LoadFile loads a single level file.
func (l *Loader) LoadFile(p string) (*GameLevel, error) {
	data, err := fs.ReadFile(l.FS, p)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", p, err)
	}

	parsed, err := parseByExtension(data, strings.ToLower(path.Ext(p)))
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", p, err)
	}

	lvl := fromYAML(parsed)
	lvl.FilePath = p
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("validating file %s: %w", p, err)
	}
	return lvl, nil
}

// Manager loads every level and wraps them in a MemoryManager. The start
// level is start when non-empty, otherwise the lowest id.
func (l *Loader) Manager(start string) (*MemoryManager, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("level: no level files under %s", l.Root)
	}
	m, err := NewMemoryManager(levels...)
	if err != nil {
		return nil, err
	}
	if start != "" {
		if err := m.SetStart(start); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// LoadDir is shorthand for NewLoader(dir).Manager(start).
func LoadDir(dir, start string) (*MemoryManager, error) {
	if _, err := os.Stat(filepath.Clean(dir)); err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	return NewLoader(dir).Manager(start)
}

func fromYAML(y formats.YAMLLevel) *GameLevel {
	lvl := &GameLevel{
		ID:       y.ID,
		Name:     y.Name,
		CellSize: y.CellSize,
		Layout:   slices.Clone(y.Layout),
		Dialog:   slices.Clone(y.Dialog),
		Metadata: y.Metadata,
	}
	if lvl.Name == "" {
		lvl.Name = lvl.ID
	}
	for _, yl := range y.Links {
		link := Link{At: core.L(yl.At.X, yl.At.Y)}
		switch yl.Kind {
		case "exit":
			link.Kind = LinkExit
			link.TargetLevel = yl.Target
		case "jump":
			link.Kind = LinkJump
			link.Destination = core.L(yl.To.X, yl.To.Y)
		}
		lvl.Links = append(lvl.Links, link)
	}
	for _, ys := range y.Spawns {
		lvl.Spawns = append(lvl.Spawns, Spawn{
			Kind: ys.Kind,
			At:   core.L(ys.At.X, ys.At.Y),
			Args: ys.Args,
		})
	}
	return lvl
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	return slices.Contains(formats.FormatExtensions(), ext)
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.YAMLLevel, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.YAMLLevel{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}

package level

import (
	"fmt"
	"sort"
)

// Manager hands out the levels of one game.
type Manager interface {
	// StartLevelID returns the id of the level a new session begins with.
	StartLevelID() string
	// Level returns the level with the given id.
	Level(id string) (*GameLevel, error)
	// Size returns the number of levels.
	Size() int
}

// MemoryManager serves a fixed set of levels held in memory.
type MemoryManager struct {
	start  string
	levels map[string]*GameLevel
	order  []string
}

// NewMemoryManager creates a manager over the given levels. The start level
// is the first one unless overridden with SetStart.
func NewMemoryManager(levels ...*GameLevel) (*MemoryManager, error) {
	m := &MemoryManager{levels: make(map[string]*GameLevel, len(levels))}
	for _, lvl := range levels {
		if _, dup := m.levels[lvl.ID]; dup {
			return nil, fmt.Errorf("level: duplicate level id %q", lvl.ID)
		}
		m.levels[lvl.ID] = lvl
		m.order = append(m.order, lvl.ID)
	}
	if len(m.order) > 0 {
		m.start = m.order[0]
	}
	return m, nil
}

// SetStart overrides the start level.
func (m *MemoryManager) SetStart(id string) error {
	if _, ok := m.levels[id]; !ok {
		return fmt.Errorf("level: unknown level %q", id)
	}
	m.start = id
	return nil
}

// StartLevelID implements Manager.
func (m *MemoryManager) StartLevelID() string {
	return m.start
}

// Level implements Manager.
func (m *MemoryManager) Level(id string) (*GameLevel, error) {
	lvl, ok := m.levels[id]
	if !ok {
		return nil, fmt.Errorf("level: unknown level %q", id)
	}
	return lvl, nil
}

// Size implements Manager.
func (m *MemoryManager) Size() int {
	return len(m.levels)
}

// IDs returns level ids in load order.
func (m *MemoryManager) IDs() []string {
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// SortedIDs returns level ids in lexical order.
func (m *MemoryManager) SortedIDs() []string {
	ids := m.IDs()
	sort.Strings(ids)
	return ids
}

var _ Manager = (*MemoryManager)(nil)

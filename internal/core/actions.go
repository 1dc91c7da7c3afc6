package core

import "github.com/zyedidia/generic/mapset"

// Action names understood by the bundled games. Controllers deliver whatever
// names their keymap defines; these are only the common ones.
const (
	ActionUp      = "up"
	ActionDown    = "down"
	ActionLeft    = "left"
	ActionRight   = "right"
	ActionFire    = "fire"
	ActionConfirm = "confirm"
)

// ActionStore holds the named actions currently pending for one controllable.
// Membership is at most once per name and unordered.
type ActionStore struct {
	actions mapset.Set[string]
}

// NewActionStore creates an empty store.
func NewActionStore() *ActionStore {
	return &ActionStore{actions: mapset.New[string]()}
}

// AddAction marks the action as pending. Adding twice is a no-op.
func (s *ActionStore) AddAction(name string) {
	s.actions.Put(name)
}

// ForgetAction removes the action. Removing an absent action is a no-op.
func (s *ActionStore) ForgetAction(name string) {
	s.actions.Remove(name)
}

// ForgetAll clears every pending action.
func (s *ActionStore) ForgetAll() {
	var names []string
	s.actions.Each(func(name string) {
		names = append(names, name)
	})
	for _, name := range names {
		s.actions.Remove(name)
	}
}

// CurrentActions returns the live set. It shares storage with the store, so
// callers that consume actions may remove them from it directly.
func (s *ActionStore) CurrentActions() mapset.Set[string] {
	return s.actions
}

// Has reports whether the action is pending.
func (s *ActionStore) Has(name string) bool {
	return s.actions.Has(name)
}

// Len returns the number of pending actions.
func (s *ActionStore) Len() int {
	return s.actions.Size()
}

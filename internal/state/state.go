// Package state persists the small amount of UI state the calendar views
// keep between sessions: which tab is open and the last agenda filter.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"farmcal/internal/calendar"
	"farmcal/internal/config"
)

// State is the persisted UI state.
type State struct {
	// SelectedTab is the calendar tab index (0 = home, 1 = assistant).
	SelectedTab int `yaml:"calendar_selected_tab" json:"calendar_selected_tab" validate:"gte=0"`
	// LastFilter is the last period the agenda searched, if any.
	LastFilter *calendar.PeriodSelector `yaml:"last_filter,omitempty" json:"last_filter,omitempty"`
}

// Store loads state on start and saves it on every change. Update applies
// fn to the current state and saves the result under one lock.
type Store interface {
	Load() (State, error)
	Save(State) error
	Update(fn func(*State)) error
}

// FileStore keeps state in a YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the zero State if the file does not exist yet.
func (s *FileStore) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse state %s: %w", s.path, err)
	}
	if st.SelectedTab < 0 {
		st.SelectedTab = 0
	}
	return st, nil
}

func (s *FileStore) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(st)
}

func (s *FileStore) Update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	fn(&st)
	return s.save(st)
}

func (s *FileStore) save(st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(s.path, data, ".farmcal-state-*.tmp")
}

// MemoryStore keeps state in process memory only.
type MemoryStore struct {
	mu sync.Mutex
	st State
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.st
	if m.st.LastFilter != nil {
		f := *m.st.LastFilter
		out.LastFilter = &f
	}
	return out, nil
}

func (m *MemoryStore) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.LastFilter != nil {
		f := *st.LastFilter
		st.LastFilter = &f
	}
	m.st = st
	return nil
}

func (m *MemoryStore) Update(fn func(*State)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.st
	if st.LastFilter != nil {
		f := *st.LastFilter
		st.LastFilter = &f
	}
	fn(&st)
	m.st = st
	return nil
}

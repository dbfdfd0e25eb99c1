// Package store owns the set of profiles available to apply: the built-in
// catalog plus the user profiles persisted in a state.Memento.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/state"
	"github.com/klauern/wsprofile/internal/validation"
)

// UserProfilesKey is the state key holding the user profile list.
const UserProfilesKey = "workspaceUserProfiles_v1"

var (
	// ErrInvalidProfile wraps required-field failures.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrDuplicateID is returned when a new profile's id is already taken.
	ErrDuplicateID = errors.New("duplicate profile id")
	// ErrNotFound is returned for ids that match no profile the operation may touch.
	ErrNotFound = errors.New("profile not found")
	// ErrPersist wraps failures writing the user profile list.
	ErrPersist = errors.New("failed to persist user profiles")
)

// Catalog supplies the built-in profiles.
type Catalog interface {
	Profiles() []model.WorkspaceProfile
}

// Store is the single source of truth for profiles. All operations are
// serialized: each one loads, mutates and persists the full user list.
type Store struct {
	mu      sync.Mutex
	state   state.Memento
	catalog Catalog
	key     string
	users   []model.WorkspaceProfile
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the state key the user list is stored under.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// New creates a Store and loads the persisted user profiles.
func New(ctx context.Context, st state.Memento, catalog Catalog, opts ...Option) *Store {
	s := &Store{
		state:   st,
		catalog: catalog,
		key:     UserProfilesKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.users = s.load(ctx)
	return s
}

// List returns the built-in and user profiles, re-reading the persisted slot.
// It never fails: unreadable or malformed state yields an empty user list.
func (s *Store) List(ctx context.Context) (builtIns, users []model.WorkspaceProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = s.load(ctx)
	return s.builtIns(), cloneAll(s.users, true)
}

// Get finds a profile by id across built-in and user profiles.
func (s *Store) Get(ctx context.Context, id string) (model.WorkspaceProfile, error) {
	builtIns, users := s.List(ctx)
	id = model.NormalizeID(id)
	for _, p := range builtIns {
		if p.ID == id {
			return p, nil
		}
	}
	for _, p := range users {
		if p.ID == id {
			return p, nil
		}
	}
	return model.WorkspaceProfile{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Save creates or updates a user profile and returns it as stored.
//
// The candidate id is normalized (an empty id is derived from the name). When
// isEditIntent is set and the id matches an existing user profile, that entry
// is overwritten in place. Every other save is a create and fails with
// ErrDuplicateID if any built-in or user profile already has the id.
func (s *Store) Save(ctx context.Context, candidate model.WorkspaceProfile, isEditIntent bool) (model.WorkspaceProfile, error) {
	if result := validation.ValidateProfile(candidate); result.HasErrors() {
		return model.WorkspaceProfile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, result.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile := candidate.Clone()
	profile.ID = model.ResolveID(candidate.ID, candidate.Name)
	profile.IsUserDefined = true

	next := cloneAll(s.users, true)
	idx := indexOf(next, profile.ID)

	if isEditIntent && idx >= 0 {
		next[idx] = profile
	} else {
		if idx >= 0 || indexOf(s.builtIns(), profile.ID) >= 0 {
			return model.WorkspaceProfile{}, fmt.Errorf("%w: profile id %q already exists", ErrDuplicateID, profile.ID)
		}
		next = append(next, profile)
	}

	if err := s.persist(ctx, next); err != nil {
		s.users = s.load(ctx)
		return model.WorkspaceProfile{}, err
	}
	s.users = next

	logging.WithContext(ctx).Info("user profile saved",
		logging.Profile(profile.ID),
		logging.Operation(saveOperation(isEditIntent && idx >= 0)))
	return profile.Clone(), nil
}

// Delete removes a user profile. Built-in ids and unknown ids report
// ErrNotFound without touching storage.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = model.NormalizeID(id)
	idx := indexOf(s.users, id)
	if idx < 0 {
		if indexOf(s.builtIns(), id) >= 0 {
			return fmt.Errorf("%w: %q is a built-in profile", ErrNotFound, id)
		}
		return fmt.Errorf("%w: user profile %q", ErrNotFound, id)
	}

	next := make([]model.WorkspaceProfile, 0, len(s.users)-1)
	next = append(next, s.users[:idx]...)
	next = append(next, s.users[idx+1:]...)

	if err := s.persist(ctx, next); err != nil {
		s.users = s.load(ctx)
		return err
	}
	s.users = next

	logging.WithContext(ctx).Info("user profile deleted", logging.Profile(id))
	return nil
}

func (s *Store) builtIns() []model.WorkspaceProfile {
	if s.catalog == nil {
		return nil
	}
	return cloneAll(s.catalog.Profiles(), false)
}

// load reads the user list from state, dropping anything that does not decode.
func (s *Store) load(ctx context.Context) []model.WorkspaceProfile {
	log := logging.WithContext(ctx)

	raw, err := s.state.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, state.ErrKeyNotFound) {
			log.Warn("reading user profiles failed, treating as empty", logging.Err(err))
		}
		return []model.WorkspaceProfile{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Warn("stored user profiles are not a list, treating as empty", logging.Err(err))
		return []model.WorkspaceProfile{}
	}

	users := make([]model.WorkspaceProfile, 0, len(entries))
	for i, entry := range entries {
		var p model.WorkspaceProfile
		if err := json.Unmarshal(entry, &p); err != nil || p.ID == "" {
			log.Warn("skipping malformed stored profile", slog.Int("index", i), logging.Err(err))
			continue
		}
		p.IsUserDefined = true
		users = append(users, p)
	}

	log.Debug("loaded user profiles", logging.Count(len(users)))
	return users
}

func (s *Store) persist(ctx context.Context, users []model.WorkspaceProfile) error {
	if users == nil {
		users = []model.WorkspaceProfile{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.state.Update(ctx, s.key, data); err != nil {
		logging.WithContext(ctx).Error("persisting user profiles failed", logging.Err(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func indexOf(profiles []model.WorkspaceProfile, id string) int {
	for i, p := range profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(profiles []model.WorkspaceProfile, userDefined bool) []model.WorkspaceProfile {
	out := make([]model.WorkspaceProfile, len(profiles))
	for i, p := range profiles {
		out[i] = p.Clone()
		out[i].IsUserDefined = userDefined
	}
	return out
}

func saveOperation(updated bool) string {
	if updated {
		return "update"
	}
	return "create"
}

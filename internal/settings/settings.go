// Package settings exposes the persisted world settings of the quest log.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/store"
)

// Namespace is the settings namespace owned by the quest log.
const Namespace = "questlog"

// Setting keys.
const (
	KeyPrimaryQuest           = "primaryQuest"
	KeyTrustedPlayerEdit      = "trustedPlayerEdit"
	KeyTrackerPosition        = "trackerPosition"
	KeyTrackerResizable       = "trackerResizable"
	KeyShowOnlyPrimaryDefault = "showOnlyPrimaryDefault"
)

// Position is the tracker window geometry in terminal cells.
type Position struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultPosition is used until a position has been saved.
var DefaultPosition = Position{Left: 0, Top: 0, Width: 36, Height: 20}

// Settings caches the namespace in memory so reads are synchronous.
// Writes go to the store first and update the cache on success.
type Settings struct {
	store  store.Store
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// New loads every quest log setting from s.
func New(ctx context.Context, s store.Store, logger *zap.Logger) (*Settings, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := &Settings{store: s, logger: logger}
	if err := st.Reload(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// Reload re-reads the namespace from the store.
func (s *Settings) Reload(ctx context.Context) error {
	values, err := s.store.GetSettings(ctx, Namespace)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	s.mu.Lock()
	s.cache = values
	s.mu.Unlock()
	return nil
}

func (s *Settings) get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cache[key]
	return v, ok
}

func (s *Settings) set(ctx context.Context, key, value string) error {
	if err := s.store.SetSetting(ctx, Namespace, key, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
	s.logger.Debug("setting saved", zap.String("key", key))
	return nil
}

func (s *Settings) getBool(key string, def bool) bool {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		s.logger.Warn("invalid boolean setting", zap.String("key", key), zap.String("value", v))
		return def
	}
	return b
}

func (s *Settings) setBool(ctx context.Context, key string, v bool) error {
	return s.set(ctx, key, strconv.FormatBool(v))
}

// PrimaryQuest returns the primary quest ID, or an empty string.
func (s *Settings) PrimaryQuest() string {
	v, _ := s.get(KeyPrimaryQuest)
	return v
}

// SetPrimaryQuest stores the primary quest ID. An empty id clears it.
func (s *Settings) SetPrimaryQuest(ctx context.Context, id string) error {
	return s.set(ctx, KeyPrimaryQuest, id)
}

// TrustedPlayerEdit reports whether quest owners who are not GMs may edit.
func (s *Settings) TrustedPlayerEdit() bool {
	return s.getBool(KeyTrustedPlayerEdit, false)
}

// SetTrustedPlayerEdit stores the trusted player edit flag.
func (s *Settings) SetTrustedPlayerEdit(ctx context.Context, v bool) error {
	return s.setBool(ctx, KeyTrustedPlayerEdit, v)
}

// TrackerResizable reports whether the tracker height follows the user.
func (s *Settings) TrackerResizable() bool {
	return s.getBool(KeyTrackerResizable, false)
}

// SetTrackerResizable stores the tracker resizable flag.
func (s *Settings) SetTrackerResizable(ctx context.Context, v bool) error {
	return s.setBool(ctx, KeyTrackerResizable, v)
}

// ShowOnlyPrimaryDefault is the tracker filter used when the session has none.
func (s *Settings) ShowOnlyPrimaryDefault() bool {
	return s.getBool(KeyShowOnlyPrimaryDefault, false)
}

// SetShowOnlyPrimaryDefault stores the default tracker filter.
func (s *Settings) SetShowOnlyPrimaryDefault(ctx context.Context, v bool) error {
	return s.setBool(ctx, KeyShowOnlyPrimaryDefault, v)
}

// TrackerPosition returns the saved tracker geometry or DefaultPosition.
func (s *Settings) TrackerPosition() Position {
	v, ok := s.get(KeyTrackerPosition)
	if !ok {
		return DefaultPosition
	}
	var p Position
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		s.logger.Warn("invalid tracker position", zap.Error(err))
		return DefaultPosition
	}
	return p
}

// SetTrackerPosition stores the tracker geometry.
func (s *Settings) SetTrackerPosition(ctx context.Context, p Position) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding tracker position: %w", err)
	}
	return s.set(ctx, KeyTrackerPosition, string(raw))
}

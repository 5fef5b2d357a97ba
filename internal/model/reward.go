package model

import (
	"errors"
	"fmt"
)

// Reward types offered by the quest forms.
const (
	RewardTypeItem     = "item"
	RewardTypeAbstract = "abstract"
)

// ErrInvalidReward is returned by CreateReward when required fields are missing.
var ErrInvalidReward = errors.New("invalid reward")

// Reward is something granted on quest completion. A reward with a nil
// Type is invalid and is never stored on a quest.
type Reward struct {
	Type   *string        `json:"type"`
	Data   map[string]any `json:"data"`
	Hidden bool           `json:"hidden"`
}

// RewardRecord is the loosely-typed input used to build a Reward.
type RewardRecord struct {
	Type   string
	Data   map[string]any
	Hidden bool
}

// NewReward builds a Reward without validation. An empty type leaves
// the reward invalid.
func NewReward(r RewardRecord) Reward {
	rw := Reward{Data: r.Data, Hidden: r.Hidden}
	if r.Type != "" {
		t := r.Type
		rw.Type = &t
	}
	if rw.Data == nil {
		rw.Data = map[string]any{}
	}
	return rw
}

// CreateReward builds a Reward and fails when the type or the name and
// image data fields are absent.
func CreateReward(r RewardRecord) (Reward, error) {
	if r.Type == "" {
		return Reward{}, fmt.Errorf("%w: type is required", ErrInvalidReward)
	}
	if r.Data == nil {
		return Reward{}, fmt.Errorf("%w: data is required", ErrInvalidReward)
	}
	if s, _ := r.Data["name"].(string); s == "" {
		return Reward{}, fmt.Errorf("%w: data.name is required", ErrInvalidReward)
	}
	if s, _ := r.Data["img"].(string); s == "" {
		return Reward{}, fmt.Errorf("%w: data.img is required", ErrInvalidReward)
	}
	return NewReward(r), nil
}

// IsValid reports whether the reward has a type.
func (r Reward) IsValid() bool {
	return r.Type != nil
}

// TypeName returns the reward type or an empty string.
func (r Reward) TypeName() string {
	if r.Type == nil {
		return ""
	}
	return *r.Type
}

// Name returns data.name when present.
func (r Reward) Name() string {
	s, _ := r.Data["name"].(string)
	return s
}

// Img returns data.img when present.
func (r Reward) Img() string {
	s, _ := r.Data["img"].(string)
	return s
}

// ToggleVisible flips the hidden flag and returns the new value.
func (r *Reward) ToggleVisible() bool {
	r.Hidden = !r.Hidden
	return r.Hidden
}

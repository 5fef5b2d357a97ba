package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReward_NoTypeIsInvalid(t *testing.T) {
	r := NewReward(RewardRecord{Data: map[string]any{"name": "Gold"}})
	assert.False(t, r.IsValid())
	assert.Nil(t, r.Type)
}

func TestCreateReward_Validation(t *testing.T) {
	tests := []struct {
		name   string
		record RewardRecord
		ok     bool
	}{
		{"missing data", RewardRecord{Type: RewardTypeItem}, false},
		{"missing type", RewardRecord{Data: map[string]any{"name": "Sword", "img": "sword.png"}}, false},
		{"missing img", RewardRecord{Type: RewardTypeItem, Data: map[string]any{"name": "Sword"}}, false},
		{"missing name", RewardRecord{Type: RewardTypeItem, Data: map[string]any{"img": "sword.png"}}, false},
		{"complete", RewardRecord{Type: RewardTypeItem, Data: map[string]any{"name": "Sword", "img": "sword.png"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := CreateReward(tt.record)
			if !tt.ok {
				require.ErrorIs(t, err, ErrInvalidReward)
				return
			}
			require.NoError(t, err)
			assert.True(t, r.IsValid())
			assert.Equal(t, "Sword", r.Name())
			assert.Equal(t, "sword.png", r.Img())
		})
	}
}

func TestReward_ToggleVisibleTwiceRestores(t *testing.T) {
	for _, hidden := range []bool{false, true} {
		r := NewReward(RewardRecord{Type: RewardTypeAbstract, Hidden: hidden})
		r.ToggleVisible()
		r.ToggleVisible()
		assert.Equal(t, hidden, r.Hidden)
	}
}

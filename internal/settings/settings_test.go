package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/settings"
	"github.com/nhle/questlog/tests/testutil"
)

func TestSettings_Defaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	st, err := settings.New(context.Background(), s, zap.NewNop())
	require.NoError(t, err)

	assert.Empty(t, st.PrimaryQuest())
	assert.False(t, st.TrustedPlayerEdit())
	assert.False(t, st.TrackerResizable())
	assert.False(t, st.ShowOnlyPrimaryDefault())
	assert.Equal(t, settings.DefaultPosition, st.TrackerPosition())
}

func TestSettings_RoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	st, err := settings.New(ctx, s, zap.NewNop())
	require.NoError(t, err)

	pos := settings.Position{Left: 4, Top: 2, Width: 40, Height: 18}
	require.NoError(t, st.SetPrimaryQuest(ctx, "q1"))
	require.NoError(t, st.SetTrustedPlayerEdit(ctx, true))
	require.NoError(t, st.SetTrackerPosition(ctx, pos))

	other, err := settings.New(ctx, s, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "q1", other.PrimaryQuest())
	assert.True(t, other.TrustedPlayerEdit())
	assert.Equal(t, pos, other.TrackerPosition())

	raw, err := s.GetSetting(ctx, settings.Namespace, settings.KeyTrustedPlayerEdit)
	require.NoError(t, err)
	assert.Equal(t, "true", raw)
}

func TestSettings_InvalidValuesFallBack(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	require.NoError(t, s.SetSetting(ctx, settings.Namespace, settings.KeyTrackerPosition, "{not json"))
	require.NoError(t, s.SetSetting(ctx, settings.Namespace, settings.KeyTrackerResizable, "maybe"))

	st, err := settings.New(ctx, s, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultPosition, st.TrackerPosition())
	assert.False(t, st.TrackerResizable())
}

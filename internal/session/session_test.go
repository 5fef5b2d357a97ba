package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	s := New()

	_, ok := s.Get(FolderStateKey("q1"))
	assert.False(t, ok)

	s.Set(FolderStateKey("q1"), Expanded)
	v, ok := s.Get(FolderStateKey("q1"))
	assert.True(t, ok)
	assert.Equal(t, Expanded, v)
	assert.Equal(t, "questlog.folderState.q1", FolderStateKey("q1"))

	s.Delete(FolderStateKey("q1"))
	_, ok = s.Get(FolderStateKey("q1"))
	assert.False(t, ok)
}

func TestStore_Bool(t *testing.T) {
	s := New()
	assert.True(t, s.Bool(KeyShowPrimary, true))

	s.SetBool(KeyShowPrimary, false)
	assert.False(t, s.Bool(KeyShowPrimary, true))

	s.Set(KeyShowPrimary, "garbage")
	assert.True(t, s.Bool(KeyShowPrimary, true))
}

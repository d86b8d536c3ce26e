package persist

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crucible/internal/conversation"
	"crucible/internal/provider"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Session", "my-session"},
		{"  fix/bug #42  ", "fix-bug--42"},
		{"already-clean", "already-clean"},
		{"---", ""},
		{"über café", "über-café"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), "input %q", tt.in)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newStore(t)

	session := conversation.NewSession("refactor auth", "sys")
	session.Messages = append(session.Messages, provider.Message{
		Role: provider.RoleUser, Content: "hello",
	})

	name, err := store.Save(session)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".json"))
	assert.Contains(t, name, "refactor-auth")

	loaded, err := store.LoadByPrefix("refactor")
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "hello", loaded.Messages[1].Content)
}

func TestSaveOverwritesSameSession(t *testing.T) {
	store := newStore(t)

	session := conversation.NewSession("demo", "sys")
	first, err := store.Save(session)
	require.NoError(t, err)

	session.Messages = append(session.Messages, provider.Message{
		Role: provider.RoleUser, Content: "more",
	})
	second, err := store.Save(session)
	require.NoError(t, err)
	assert.Equal(t, first, second, "stable filename per session")

	summaries, err := store.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Messages)
}

func TestLoadByPrefixMatchesIDAndFilename(t *testing.T) {
	store := newStore(t)

	session := conversation.NewSession("demo", "")
	name, err := store.Save(session)
	require.NoError(t, err)

	byID, err := store.LoadByPrefix(session.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, session.ID, byID.ID)

	byFile, err := store.LoadByPrefix(name[:10])
	require.NoError(t, err)
	assert.Equal(t, session.ID, byFile.ID)
}

func TestLoadByPrefixNameIsCaseInsensitive(t *testing.T) {
	store := newStore(t)

	session := conversation.NewSession("Deploy Fix", "")
	_, err := store.Save(session)
	require.NoError(t, err)

	loaded, err := store.LoadByPrefix("deploy")
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
}

func TestLoadByPrefixNotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.LoadByPrefix("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadByPrefixAmbiguous(t *testing.T) {
	store := newStore(t)

	a := conversation.NewSession("deploy one", "")
	b := conversation.NewSession("deploy two", "")
	_, err := store.Save(a)
	require.NoError(t, err)
	_, err = store.Save(b)
	require.NoError(t, err)

	_, err = store.LoadByPrefix("deploy")
	var ambiguous *AmbiguousPrefixError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Matches, 2)
	assert.Contains(t, err.Error(), "deploy one")
	assert.Contains(t, err.Error(), "deploy two")
}

func TestListNewestFirst(t *testing.T) {
	store := newStore(t)

	old := conversation.NewSession("old", "")
	old.UpdatedAt = time.Now().Add(-time.Hour)
	recent := conversation.NewSession("recent", "")

	_, err := store.Save(old)
	require.NoError(t, err)
	_, err = store.Save(recent)
	require.NoError(t, err)

	summaries, err := store.List()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "recent", summaries[0].Name)
	assert.Equal(t, "old", summaries[1].Name)
}

func TestDeleteByPrefix(t *testing.T) {
	store := newStore(t)

	session := conversation.NewSession("scratch", "")
	_, err := store.Save(session)
	require.NoError(t, err)

	name, err := store.DeleteByPrefix("scratch")
	require.NoError(t, err)
	assert.Equal(t, "scratch", name)

	_, err = store.LoadByPrefix("scratch")
	assert.ErrorIs(t, err, ErrNotFound)
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundtrip(t *testing.T) {
	st := NewMemory()

	require.NoError(t, st.Put("raw/my.ics", []byte("BEGIN:VCALENDAR")))

	got, err := st.Get("raw/my.ics")
	require.NoError(t, err)
	assert.Equal(t, []byte("BEGIN:VCALENDAR"), got)
}

func TestPutOverwrites(t *testing.T) {
	st := NewMemory()

	require.NoError(t, st.Put("raw/my.ics", []byte("old")))
	require.NoError(t, st.Put("raw/my.ics", []byte("new")))

	got, err := st.Get("raw/my.ics")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestGetMissingKey(t *testing.T) {
	st := NewMemory()

	_, err := st.Get("raw/absent.ics")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByPrefixAndExtension(t *testing.T) {
	st := NewMemory()

	require.NoError(t, st.Put("raw/my.ics", []byte("a")))
	require.NoError(t, st.Put("raw/scholarships.ics", []byte("b")))
	require.NoError(t, st.Put("raw/notes.txt", []byte("c")))
	require.NoError(t, st.Put("merged/merged_all.ics", []byte("d")))

	keys, err := st.List("raw/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"raw/my.ics", "raw/scholarships.ics"}, keys)
}

func TestListEmptyPrefix(t *testing.T) {
	st := NewMemory()

	keys, err := st.List("raw/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestOSStoreOnDisk(t *testing.T) {
	st := NewOS(t.TempDir())

	require.NoError(t, st.Put("merged/merged_all.ics", []byte("payload")))

	got, err := st.Get("merged/merged_all.ics")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	keys, err := st.List("merged/")
	require.NoError(t, err)
	assert.Equal(t, []string{"merged/merged_all.ics"}, keys)
}

package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	csv := "id,name,primary_state,states\n" +
		"N003,Navajo Nation,az,az;nm;ut\n" +
		"N001,Cherokee Nation,OK,\n" +
		"N002,Shinnecock Indian Nation,,NY\n"

	idx, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	// Sorted by ID regardless of source order.
	nations := idx.Nations()
	assert.Equal(t, "N001", nations[0].ID)
	assert.Equal(t, "N002", nations[1].ID)
	assert.Equal(t, "N003", nations[2].ID)

	n, ok := idx.ByID("N003")
	require.True(t, ok)
	assert.Equal(t, "Navajo Nation", n.Name)
	assert.Equal(t, "AZ", n.PrimaryState)
	assert.Equal(t, []string{"AZ", "NM", "UT"}, n.States)

	// Primary state defaults into the states list.
	n, ok = idx.ByID("N001")
	require.True(t, ok)
	assert.Equal(t, []string{"OK"}, n.States)

	_, ok = idx.ByID("N999")
	assert.False(t, ok)
}

func TestRead_SkipsIncompleteRows(t *testing.T) {
	csv := "id,name,primary_state,states\n" +
		"N001,Cherokee Nation,OK,\n" +
		",Nameless,OK,\n" +
		"N002,,OK,\n" +
		"N003\n"

	idx, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestRead_DuplicateID(t *testing.T) {
	csv := "id,name,primary_state,states\n" +
		"N001,Cherokee Nation,OK,\n" +
		"N001,Cherokee Nation Again,OK,\n"

	_, err := Read(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate nation id N001")
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader("id,name,primary_state,states\n"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func testIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Read(strings.NewReader(
		"id,name,primary_state,states\n" +
			"N001,Cherokee Nation,OK,\n" +
			"N002,Navajo Nation,AZ,AZ;NM;UT\n",
	))
	require.NoError(t, err)
	return idx
}

func TestLoadAliases_CSV(t *testing.T) {
	idx := testIndex(t)

	path := filepath.Join(t.TempDir(), "aliases.csv")
	csv := "nation_id,alias\n" +
		"N001,CNO Tribal Services\n" +
		"N001,Cherokee Nation of Oklahoma\n" +
		"N999,Unknown Nation Alias\n" +
		",Blank ID\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	require.NoError(t, idx.LoadAliases(path, ""))

	n, ok := idx.ByID("N001")
	require.True(t, ok)
	assert.Equal(t, []string{"CNO Tribal Services", "Cherokee Nation of Oklahoma"}, n.Aliases)

	n, ok = idx.ByID("N002")
	require.True(t, ok)
	assert.Empty(t, n.Aliases)
}

func TestLoadAliases_MissingFile(t *testing.T) {
	idx := testIndex(t)
	assert.Error(t, idx.LoadAliases(filepath.Join(t.TempDir(), "nope.csv"), ""))
}

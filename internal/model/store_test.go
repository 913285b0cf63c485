package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStoreLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "MPI.csv", canonicalSample)
	writeFile(t, dir, "pcsi.csv", "Matiere,Prof,Jour,Heure,Salle,03/10/24\nChimie,Durand,Jeudi,16h,12,4\n")
	// The example template file is always ignored.
	writeFile(t, dir, "example.csv", canonicalSample)
	// A corrupt file is skipped without blocking the other classes.
	writeFile(t, dir, "mp2i.csv", "Matiere,Prof,Jour,Heure,Salle,??\nMath,Dupont,Lundi,8h,101,1\n")

	s := NewStore()
	require.NoError(t, s.LoadDir(dir, nil, paris))

	assert.Equal(t, []string{"mpi", "pcsi"}, s.Classes())

	// Lookup is case-insensitive against the lower-cased file base name.
	c, ok := s.Get("MpI")
	require.True(t, ok)
	assert.Len(t, c.Colles, 3)

	_, ok = s.Get("example")
	assert.False(t, ok)
	_, ok = s.Get("mp2i")
	assert.False(t, ok)
}

func TestStoreReplaceAllSwapsWholesale(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(map[string]*Colloscope{"mpi": {Class: "mpi"}})
	first, ok := s.Get("mpi")
	require.True(t, ok)

	s.ReplaceAll(map[string]*Colloscope{"pcsi": {Class: "pcsi"}})
	_, ok = s.Get("mpi")
	assert.False(t, ok, "old classes disappear on swap")
	assert.Equal(t, []string{"pcsi"}, s.Classes())

	// The instance handed out earlier is unaffected by the swap.
	assert.Equal(t, "mpi", first.Class)
}

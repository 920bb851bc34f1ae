package hostdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ptclisp/ptclisp/internal/hostdata"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
)

func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFileEmptyPathReturnsEmptyMap(t *testing.T) {
	m, err := hostdata.LoadFile("")
	require.NoError(t, err)
	require.Equal(t, 0, m.Len())
}

func TestLoadFileConvertsNestedMapping(t *testing.T) {
	path := writeYAML(t, "name: alice\nage: 30\ntags:\n  - a\n  - b\n")
	m, err := hostdata.LoadFile(path)
	require.NoError(t, err)

	name, ok := m.Get(runtimevalue.Keyword{Name: "name"})
	require.True(t, ok)
	require.Equal(t, "alice", name.(runtimevalue.String).Value)

	age, ok := m.Get(runtimevalue.Keyword{Name: "age"})
	require.True(t, ok)
	n, _ := age.(runtimevalue.Int).Int64()
	require.Equal(t, int64(30), n)

	tags, ok := m.Get(runtimevalue.Keyword{Name: "tags"})
	require.True(t, ok)
	v := tags.(runtimevalue.Vector)
	require.Equal(t, 2, v.Len())
}

func TestLoadFileRejectsNonMappingTopLevel(t *testing.T) {
	path := writeYAML(t, "- a\n- b\n")
	_, err := hostdata.LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileMissingFileErrors(t *testing.T) {
	_, err := hostdata.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConvertBoolAndNil(t *testing.T) {
	require.Equal(t, runtimevalue.True, hostdata.Convert(true))
	require.Equal(t, runtimevalue.NilValue, hostdata.Convert(nil))
}

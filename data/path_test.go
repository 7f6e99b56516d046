package data

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFileSystemID = "11111111-1111-1111-1111-111111111111"

func TestParsePath_Normalization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"canonical", "/" + testFileSystemID + "/docs/report.pdf", "/" + testFileSystemID + "/docs/report.pdf"},
		{"missing leading slash", testFileSystemID + "/docs", "/" + testFileSystemID + "/docs"},
		{"surrounding whitespace", "  /" + testFileSystemID + "/a  ", "/" + testFileSystemID + "/a"},
		{"doubled slashes", "//" + testFileSystemID + "///a//b", "/" + testFileSystemID + "/a/b"},
		{"trailing slash", "/" + testFileSystemID + "/a/", "/" + testFileSystemID + "/a"},
		{"root", "/" + testFileSystemID, "/" + testFileSystemID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePath(tt.raw, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.want, p.VirtualPath)
			assert.True(t, strings.HasPrefix(p.VirtualPath, "/"))
			assert.NotContains(t, p.VirtualPath, "//")
			assert.Equal(t, testFileSystemID, p.FileSystemID.String())
		})
	}
}

func TestParsePath_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "/", "//", "/not-a-guid/a", "docs/" + testFileSystemID,
		"/" + testFileSystemID + "/a/../b", "/" + testFileSystemID + "/./a", "/" + testFileSystemID + "/.."} {
		t.Run(raw, func(t *testing.T) {
			p, err := ParsePath(raw, nil)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrInvalidPath), "expected ErrInvalidPath, got %v", err)
		})
	}
}

func TestPath_IsRoot(t *testing.T) {
	root := MustParsePath("/"+testFileSystemID+"/", nil)
	assert.True(t, root.IsRoot())
	assert.Nil(t, root.Parent())
	assert.Empty(t, root.Name())
	assert.Empty(t, root.Segments())

	child := MustParsePath("/"+testFileSystemID+"/a", nil)
	assert.False(t, child.IsRoot())
	assert.True(t, child.Parent().IsRoot())
}

func TestPath_EqualityIgnoresTenant(t *testing.T) {
	a := MustParsePath("/"+testFileSystemID+"/a", Tenant(1))
	b := MustParsePath(testFileSystemID+"//a", Tenant(2))
	c := MustParsePath("/"+testFileSystemID+"/b", Tenant(1))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestPath_Helpers(t *testing.T) {
	p := MustParsePath("/"+testFileSystemID+"/a/b/c.txt", Tenant(7))

	assert.Equal(t, "c.txt", p.Name())
	assert.Equal(t, []string{"a", "b", "c.txt"}, p.Segments())
	assert.Equal(t, "a/b/c.txt", p.Relative())
	assert.Equal(t, "/"+testFileSystemID+"/a/b", p.Parent().VirtualPath)
	assert.Equal(t, int64(7), *p.Parent().TenantID)

	joined, err := p.Parent().Join("d.txt")
	require.NoError(t, err)
	assert.Equal(t, "/"+testFileSystemID+"/a/b/d.txt", joined.VirtualPath)
}

func TestRebasePath(t *testing.T) {
	assert.Equal(t, "/fs/x/b/c", RebasePath("/fs/a/b/c", "/fs/a", "/fs/x"))
	assert.Equal(t, "/fs/x", RebasePath("/fs/a", "/fs/a", "/fs/x"))
	assert.Equal(t, "/fs/ab/c", RebasePath("/fs/ab/c", "/fs/a", "/fs/x"))

	assert.True(t, IsDescendantPath("/fs/a/b", "/fs/a"))
	assert.False(t, IsDescendantPath("/fs/ab", "/fs/a"))
	assert.False(t, IsDescendantPath("/fs/a", "/fs/a"))
	assert.True(t, IsUnderPath("/fs/a", "/fs/a"))
}

package cloudcity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frankcohen/cloudcity"
)

func TestResolvePath(t *testing.T) {
	invalidUTF8 := string([]byte{'/', 'a', 0xff, 'b'})

	tt := []struct {
		Name string
		Path string
		Want string
		Err  bool
	}{
		// Root
		{Name: "empty path is root", Path: "", Want: "."},
		{Name: "slash is root", Path: "/", Want: "."},
		{Name: "dot is root", Path: ".", Want: "."},
		{Name: "many slashes is root", Path: "///", Want: "."},

		// Normalization
		{Name: "leading slash stripped", Path: "/a/b.txt", Want: "a/b.txt"},
		{Name: "trailing slash stripped", Path: "a/b/", Want: "a/b"},
		{Name: "double slash collapsed", Path: "a//b", Want: "a/b"},
		{Name: "dot segment dropped", Path: "a/./b", Want: "a/b"},
		{Name: "backslashes normalized", Path: `a\b\c.txt`, Want: "a/b/c.txt"},
		{Name: "question mark kept", Path: "/a/what?.txt", Want: "a/what?.txt"},
		{Name: "hash kept", Path: "/a/photo#1.jpg", Want: "a/photo#1.jpg"},
		{Name: "question mark only", Path: "?", Want: "?"},
		{Name: "dots inside name allowed", Path: "a/b..c", Want: "a/b..c"},
		{Name: "hidden file allowed", Path: ".hidden/file", Want: ".hidden/file"},
		{Name: "spaces allowed", Path: "my docs/file one.txt", Want: "my docs/file one.txt"},
		{Name: "unicode allowed", Path: "привет/世界/file.ext", Want: "привет/世界/file.ext"},

		// Traversal
		{Name: "parent at start", Path: "../etc/passwd", Err: true},
		{Name: "parent in middle", Path: "a/../b", Err: true},
		{Name: "parent at end", Path: "/a/..", Err: true},
		{Name: "parent only", Path: "..", Err: true},
		{Name: "parent with backslashes", Path: `a\..\..\b`, Err: true},
		{Name: "parent after leading slash", Path: "/../../root", Err: true},

		// Characters
		{Name: "contains NUL", Path: "a\x00b", Err: true},
		{Name: "contains newline", Path: "a\nb", Err: true},
		{Name: "contains DEL", Path: "a\x7fb", Err: true},
		{Name: "invalid utf8", Path: invalidUTF8, Err: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := cloudcity.ResolvePath(tc.Path)
			if tc.Err {
				assert.ErrorIs(t, err, cloudcity.ErrInvalidPath)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestResolvePath_RejectsEveryParentSegment(t *testing.T) {
	prefixes := []string{"", "/", "a/", "a/b/", `a\`}
	suffixes := []string{"", "/", "/x", "/x/y.txt", `\x`}

	for _, prefix := range prefixes {
		for _, suffix := range suffixes {
			p := prefix + ".." + suffix
			_, err := cloudcity.ResolvePath(p)
			assert.ErrorIs(t, err, cloudcity.ErrInvalidPath, "path %q", p)
		}
	}
}

func TestResolveName(t *testing.T) {
	tt := []struct {
		Name  string
		Input string
		Want  string
		Err   bool
	}{
		{Name: "plain name", Input: "a.txt", Want: "a.txt"},
		{Name: "leading slash tolerated", Input: "/a.txt", Want: "a.txt"},
		{Name: "hash in name", Input: "photo#1.jpg", Want: "photo#1.jpg"},
		{Name: "question mark in name", Input: "what?.txt", Want: "what?.txt"},
		{Name: "empty", Input: "", Err: true},
		{Name: "root", Input: "/", Err: true},
		{Name: "nested", Input: "a/b.txt", Err: true},
		{Name: "traversal", Input: "../a.txt", Err: true},
		{Name: "windows nested", Input: `a\b.txt`, Err: true},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := cloudcity.ResolveName(tc.Input)
			if tc.Err {
				assert.ErrorIs(t, err, cloudcity.ErrInvalidPath)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a.txt", cloudcity.BaseName("a.txt"))
	assert.Equal(t, "a.txt", cloudcity.BaseName("dir/a.txt"))
	assert.Equal(t, "a.txt", cloudcity.BaseName(`C:\Users\me\a.txt`))
	assert.Equal(t, "", cloudcity.BaseName(""))
	assert.Equal(t, "", cloudcity.BaseName("/"))
}

func TestContentTypeOf(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", cloudcity.ContentTypeOf("a/b.txt"))
	assert.Equal(t, "image/png", cloudcity.ContentTypeOf("photo.png"))
	assert.Equal(t, "application/octet-stream", cloudcity.ContentTypeOf("noext"))
	assert.Equal(t, "application/octet-stream", cloudcity.ContentTypeOf("weird.zzqqx"))
}

package images

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedType(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"image/png", true},
		{"image/jpg", true},
		{"image/jpeg", true},
		{"IMAGE/PNG", true},
		{"image/jpeg; charset=binary", true},
		{"image/gif", false},
		{"application/pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAllowedType(tt.in), tt.in)
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "images/a.png", NormalizePath(`images\a.png`))
	assert.Equal(t, "images/sub/a.png", NormalizePath(`images\sub\a.png`))
	assert.Equal(t, "images/a.png", NormalizePath("images/a.png"))
}

func TestObjectName(t *testing.T) {
	a := ObjectName("a.png")
	b := ObjectName("a.png")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-a.png"))
	assert.True(t, strings.HasSuffix(ObjectName(`C:\Users\me\my pic.jpg`), "-my-pic.jpg"))
	assert.True(t, strings.HasSuffix(ObjectName("../../etc/passwd"), "-passwd"))
	assert.True(t, strings.HasSuffix(ObjectName(""), "-image"))
}

func TestKeyUnder(t *testing.T) {
	key, ok := keyUnder("images", "images/a.png")
	assert.True(t, ok)
	assert.Equal(t, "images/a.png", key)

	_, ok = keyUnder("images", "images/../secrets/a.png")
	assert.False(t, ok)

	_, ok = keyUnder("images", "other/a.png")
	assert.False(t, ok)

	key, ok = keyUnder("", "/a.png")
	assert.True(t, ok)
	assert.Equal(t, "a.png", key)
}

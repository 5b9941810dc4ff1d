package resource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentKey(t *testing.T) {
	a := ContentKey([]byte("f 1 2 3"))
	b := ContentKey([]byte("f 1 2 3"))
	c := ContentKey([]byte("f 1 3 2"))

	assert.Equal(t, a, b, "identical bytes share a key")
	assert.NotEqual(t, a, c, "different bytes never alias")
	assert.True(t, a.IsContent())
	assert.True(t, strings.HasPrefix(string(a), "blake2b:"))
	assert.Len(t, string(a), len("blake2b:")+64)
}

func TestPathKey(t *testing.T) {
	assert.Equal(t, PathKey("res/models/a.obj"), PathKey("res/./models/../models/a.obj"))
	assert.NotEqual(t, PathKey("a.obj"), PathKey("b.obj"))
	assert.False(t, PathKey("a.obj").IsContent())
}

func TestKeyNamespacesDoNotCollide(t *testing.T) {
	data := []byte("cube")
	assert.NotEqual(t, PathKey("cube"), ContentKey(data))
	assert.NotEqual(t, PathKey("cube"), BuiltinKey("cube"))
}

func TestShort(t *testing.T) {
	k := ContentKey([]byte("x"))
	assert.Len(t, k.Short(), len("blake2b:")+12)
	assert.Equal(t, "path:a.obj", PathKey("a.obj").Short())
}

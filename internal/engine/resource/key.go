package resource

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Key identifies a cached resource. Path keys and content keys live in
// separate namespaces, so an upload never aliases a file on disk.
type Key string

const (
	pathPrefix    = "path:"
	contentPrefix = "blake2b:"
	builtinPrefix = "builtin:"
)

// PathKey derives the key for an asset addressed by a stable path.
func PathKey(path string) Key {
	return Key(pathPrefix + filepath.ToSlash(filepath.Clean(path)))
}

// ContentKey derives the key for user-supplied bytes from their BLAKE2b-256
// digest. Byte-identical uploads share a key whatever they were named.
func ContentKey(data []byte) Key {
	sum := blake2b.Sum256(data)
	return Key(contentPrefix + hex.EncodeToString(sum[:]))
}

// BuiltinKey names a resource generated in code, such as the cube.
func BuiltinKey(name string) Key {
	return Key(builtinPrefix + name)
}

// IsContent reports whether k was derived from content bytes.
func (k Key) IsContent() bool {
	return strings.HasPrefix(string(k), contentPrefix)
}

// Short returns an abbreviated form for logs.
func (k Key) Short() string {
	s := string(k)
	if k.IsContent() && len(s) > len(contentPrefix)+12 {
		return s[:len(contentPrefix)+12]
	}
	return s
}

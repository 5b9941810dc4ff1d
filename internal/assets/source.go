// Package assets locates and loads model, texture and text assets off the
// render thread and hands the results back through a completion queue.
package assets

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Upload is an asset supplied as bytes, such as a file picked by the user.
// Its identity is the content, not the name.
type Upload struct {
	Name string
	Data []byte
}

// Source describes where an asset comes from. Exactly one of Path and
// Upload is set.
type Source struct {
	Path   string
	Upload *Upload
}

// FromPath returns a source addressed by a stable path.
func FromPath(path string) Source {
	return Source{Path: path}
}

// FromUpload returns a source for user-supplied bytes.
func FromUpload(name string, data []byte) Source {
	return Source{Upload: &Upload{Name: name, Data: data}}
}

// IsUpload reports whether the source carries its own bytes.
func (s Source) IsUpload() bool { return s.Upload != nil }

// Name returns a display name.
func (s Source) Name() string {
	if s.Upload != nil {
		return s.Upload.Name
	}
	return filepath.Base(s.Path)
}

// Ext returns the lower-case file extension of the source's name.
func (s Source) Ext() string {
	name := s.Path
	if s.Upload != nil {
		name = s.Upload.Name
	}
	return strings.ToLower(filepath.Ext(name))
}

func (s Source) String() string {
	if s.Upload != nil {
		return fmt.Sprintf("upload %q (%d bytes)", s.Upload.Name, len(s.Upload.Data))
	}
	return s.Path
}

// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// RegularVertexShader draws lit, optionally textured or vertex-colored meshes.
//
//go:embed regular.vert
var RegularVertexShader string

// RegularFragmentShader is the fragment stage of the regular program.
//
//go:embed regular.frag
var RegularFragmentShader string

// PickingVertexShader transforms geometry for the ID pass.
//
//go:embed picking.vert
var PickingVertexShader string

// PickingFragmentShader writes instance identities into an RG32UI target.
//
//go:embed picking.frag
var PickingFragmentShader string

// OutlineVertexShader inflates the selected mesh for the outline pass.
//
//go:embed outline.vert
var OutlineVertexShader string

// OutlineFragmentShader is the flat outline color.
//
//go:embed outline.frag
var OutlineFragmentShader string

// GridVertexShader generates a ground quad around the camera.
//
//go:embed grid.vert
var GridVertexShader string

// GridFragmentShader draws fading grid lines on the ground quad.
//
//go:embed grid.frag
var GridFragmentShader string

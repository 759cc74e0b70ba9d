package primitives

import (
	"github.com/go-gl/mathgl/mgl64"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind is a solid the registry can draw. Every mesh is unit sized and centered on the origin.
type Kind int

const (
	Sphere Kind = iota // radius 0.5
	Box                // 1x1x1
	Floor              // 1x1 quad in XZ
)

// cached holds mesh and material for one kind. Created lazily on first Draw.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Registry draws lit collider solids and the floor. Meshes are created on first use so that GPU
// resources are allocated after the window/OpenGL context exists.
type Registry struct {
	cache    map[Kind]cached
	shader   rl.Shader
	viewPos  [3]float32 // camera position, set each frame for lighting
	lightDir [3]float32 // direction to light (normalized), set each frame
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[Kind]cached),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

// SetView sets camera position and direction-to-light for this frame. Call once per frame
// before drawing.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

const sphereRings, sphereSlices = 16, 16

func (r *Registry) ensure(k Kind) (cached, bool) {
	if c, ok := r.cache[k]; ok {
		return c, true
	}
	var mesh rl.Mesh
	switch k {
	case Sphere:
		mesh = rl.GenMeshSphere(0.5, sphereRings, sphereSlices)
	case Box:
		mesh = rl.GenMeshCube(1, 1, 1)
	case Floor:
		mesh = rl.GenMeshPlane(1, 1, 1, 1)
	default:
		return cached{}, false
	}
	if r.shader.ID == 0 {
		r.shader = rl.LoadShaderFromMemory(litVS, litFS)
	}
	mtl := rl.LoadMaterialDefault()
	if rl.IsShaderValid(r.shader) {
		mtl.Shader = r.shader
	}
	c := cached{mesh: mesh, mtl: mtl}
	r.cache[k] = c
	return c, true
}

// Placement returns the translation and per-axis scale that map the unit mesh of k onto a solid
// with the given center and size. For Sphere size is the radius, for Box the half extents and for
// Floor the half width of the square.
func Placement(k Kind, center, size mgl64.Vec3) (pos, scale [3]float32) {
	pos = [3]float32{float32(center[0]), float32(center[1]), float32(center[2])}
	switch k {
	case Sphere:
		d := float32(2 * size[0])
		scale = [3]float32{d, d, d}
	case Floor:
		w := float32(2 * size[0])
		scale = [3]float32{w, 1, w}
	default:
		scale = [3]float32{float32(2 * size[0]), float32(2 * size[1]), float32(2 * size[2])}
	}
	for i, s := range scale {
		if s == 0 {
			scale[i] = 1
		}
	}
	return pos, scale
}

// Draw draws one solid of kind k tinted col. Must be called between BeginMode3D and EndMode3D.
// Unknown kinds are skipped.
func (r *Registry) Draw(k Kind, center, size mgl64.Vec3, col rl.Color) {
	c, ok := r.ensure(k)
	if !ok {
		return
	}
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = col
	}
	r.setUniforms()
	pos, scale := Placement(k, center, size)
	transform := rl.MatrixMultiply(rl.MatrixScale(scale[0], scale[1], scale[2]), rl.MatrixTranslate(pos[0], pos[1], pos[2]))
	rl.DrawMesh(c.mesh, c.mtl, transform)
}

// Unload frees every cached mesh and the shared shader.
func (r *Registry) Unload() {
	for k, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		delete(r.cache, k)
	}
	if r.shader.ID != 0 {
		rl.UnloadShader(r.shader)
		r.shader = rl.Shader{}
	}
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), specularPower) * specularStrength;
  vec3 rgb = ambient.rgb * colDiffuse.rgb + colDiffuse.rgb * NdotL + vec3(spec) * step(0.0, NdotL);
  finalColor = vec4(rgb, colDiffuse.a);
}
`
)

var ambientTerm = [4]float32{0.25, 0.26, 0.3, 1.0}

const (
	specularPower    = float32(32.0)
	specularStrength = float32(0.25)
)

// setUniforms uploads view and light state (cgo-safe: local arrays).
func (r *Registry) setUniforms() {
	sh := r.shader
	if !rl.IsShaderValid(sh) {
		return
	}
	viewPos := r.viewPos
	lightDir := r.lightDir
	amb := ambientTerm
	if loc := rl.GetShaderLocation(sh, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(sh, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(sh, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(sh, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(sh, "ambient"); loc >= 0 {
		rl.SetShaderValueV(sh, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(sh, "specularPower"); loc >= 0 {
		rl.SetShaderValue(sh, loc, []float32{specularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(sh, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(sh, loc, []float32{specularStrength}, rl.ShaderUniformFloat)
	}
}

package sim

// Config is the persisted start-up state of a Simulation. Names are resolved when the simulation is built.
type Config struct {
	TimeStep float64 `json:"time_step"`
	MaxFrame float64 `json:"max_frame"`

	Mode       string `json:"mode"`
	Integrator string `json:"integrator"`
	Render     string `json:"render"`

	ClothWidth  float64 `json:"cloth_width"`
	ClothHeight float64 `json:"cloth_height"`
	ClothRows   int     `json:"cloth_rows"`
	ClothCols   int     `json:"cloth_cols"`
	Fabric      string  `json:"fabric"`
	TearFactor  float64 `json:"tear_factor,omitempty"`
	// ClothSubsteps splits every Verlet cloth step. The stock fabrics other than rubber diverge
	// under a single 1/60 s Verlet step; values below 1 mean 1.
	ClothSubsteps int `json:"cloth_substeps"`

	WindDirection [3]float64 `json:"wind_direction"`
	WindStrength  float64    `json:"wind_strength,omitempty"`

	Shape    string `json:"shape"`
	Material string `json:"material"`

	// SphereCollider adds the stock sphere obstacle at (0,1,0) with radius 1.
	SphereCollider bool `json:"sphere_collider"`
}

// DefaultClothSubsteps keeps the lagged spring damping of every stock fabric stable at the default step.
const DefaultClothSubsteps = 16

// DefaultConfig is a 4×4 cotton sheet of 15×15 particles over the stock sphere, and a jelly sphere.
func DefaultConfig() Config {
	return Config{
		TimeStep:       DefaultTimeStep,
		MaxFrame:       DefaultMaxFrame,
		Mode:           ModeCloth.String(),
		Integrator:     Verlet.String(),
		Render:         RenderShaded.String(),
		ClothWidth:     4,
		ClothHeight:    4,
		ClothRows:      15,
		ClothCols:      15,
		Fabric:         "cotton",
		ClothSubsteps:  DefaultClothSubsteps,
		WindDirection:  [3]float64{0, 0, 1},
		Shape:          "sphere",
		Material:       "jelly",
		SphereCollider: true,
	}
}

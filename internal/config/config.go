// Package config handles composer configuration loading and management.
package config

// Config holds all composer settings. Scene contents are never written back
// here; the Scene section only lists what to load at startup.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Picking  PickingConfig  `yaml:"picking"`
	Editor   EditorConfig   `yaml:"editor"`
	Assets   AssetsConfig   `yaml:"assets"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	FOV        float32    `yaml:"fov"` // vertical, degrees
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	ClearColor [4]float32 `yaml:"clear_color"`
}

// CameraConfig holds navigation sensitivities, start pose and key bindings.
type CameraConfig struct {
	MoveSensitivity   float32    `yaml:"move_sensitivity"`
	RotateSensitivity float32    `yaml:"rotate_sensitivity"`
	ZoomSensitivity   float32    `yaml:"zoom_sensitivity"`
	PanSensitivity    float32    `yaml:"pan_sensitivity"`
	StartPosition     [3]float32 `yaml:"start_position"`
	StartPitch        float32    `yaml:"start_pitch"` // degrees about the right axis
	Keys              KeyBinding `yaml:"keys"`
}

// KeyBinding maps navigation actions to key names as reported by SDL.
type KeyBinding struct {
	Forward string `yaml:"forward"`
	Back    string `yaml:"back"`
	Left    string `yaml:"left"`
	Right   string `yaml:"right"`
}

// PickingConfig controls the ID-buffer picking pass.
type PickingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EditorConfig holds step sizes for keyboard transforms.
type EditorConfig struct {
	MoveStep   float32 `yaml:"move_step"`
	RotateStep float32 `yaml:"rotate_step"` // degrees
	ScaleStep  float32 `yaml:"scale_step"`
	LightStep  float32 `yaml:"light_step"`
	ShowGrid   bool    `yaml:"show_grid"`
}

// AssetsConfig controls where stable asset paths are resolved.
type AssetsConfig struct {
	Roots          []string `yaml:"roots"`
	MaxTextureSize int      `yaml:"max_texture_size"`
	Workers        int      `yaml:"workers"`
}

// SceneConfig lists the placements loaded at startup.
type SceneConfig struct {
	Preset []Placement `yaml:"preset"`
}

// Placement is one model to load at startup.
type Placement struct {
	Model    string     `yaml:"model"`
	Texture  string     `yaml:"texture,omitempty"`
	Position [3]float32 `yaml:"position"`
	Yaw      float32    `yaml:"yaw"`
	Scale    float32    `yaml:"scale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			VSync:      true,
			FOV:        60,
			Near:       1,
			Far:        100,
			ClearColor: [4]float32{0.16, 0.16, 0.16, 1},
		},
		Camera: CameraConfig{
			MoveSensitivity:   0.15,
			RotateSensitivity: 0.07,
			ZoomSensitivity:   0.01,
			PanSensitivity:    0.01,
			StartPosition:     [3]float32{0, 4, 12},
			StartPitch:        -20,
			Keys: KeyBinding{
				Forward: "W",
				Back:    "S",
				Left:    "A",
				Right:   "D",
			},
		},
		Picking: PickingConfig{
			Enabled: true,
		},
		Editor: EditorConfig{
			MoveStep:   0.15,
			RotateStep: 5,
			ScaleStep:  0.05,
			LightStep:  0.05,
			ShowGrid:   true,
		},
		Assets: AssetsConfig{
			Roots:          []string{"."},
			MaxTextureSize: 4096,
			Workers:        4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

package camera

// Preset names for common configurations
const (
	PresetPhoto  = "photo"
	PresetHigh   = "high"
	PresetMedium = "medium"
	PresetLow    = "low"
	PresetVGA    = "vga"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetPhoto:  DefaultConfig(),
		PresetHigh:   HighConfig(),
		PresetMedium: MediumConfig(),
		PresetLow:    LowConfig(),
		PresetVGA:    VGAConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetPhoto,
		PresetHigh,
		PresetMedium,
		PresetLow,
		PresetVGA,
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	presets := Presets()
	if cfg, ok := presets[name]; ok {
		return &cfg
	}
	return nil
}

// HighConfig returns 1080p at 30 fps.
func HighConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	cfg.Framerate = 30
	cfg.Preset = PresetHigh
	return cfg
}

// MediumConfig returns 720p at 30 fps.
// Good balance of detection accuracy and CPU.
func MediumConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	cfg.Framerate = 30
	cfg.Preset = PresetMedium
	return cfg
}

// LowConfig returns 640x360 at 30 fps.
func LowConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 360
	cfg.Framerate = 30
	cfg.Preset = PresetLow
	return cfg
}

// VGAConfig returns 640x480 at 30 fps.
// Use this if higher resolution causes issues.
func VGAConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	cfg.Framerate = 30
	cfg.Preset = PresetVGA
	return cfg
}

package config

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset maps a CLI string to a preset. Unknown values return "" (config default).
func ParsePreset(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s)
	default:
		return ""
	}
}

// ApplyRunnerPreset modifies the physics based on a difficulty preset.
// Normal keeps the configured values; fixed keeps the base speed but stops
// the per-spawn speed increase.
func ApplyRunnerPreset(cfg *RunnerConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Physics.BaseSpeed *= 0.8
		cfg.Physics.SpeedIncrement *= 0.5
	case DifficultyHard:
		cfg.Physics.BaseSpeed *= 1.4
		cfg.Physics.SpeedIncrement *= 2
	case DifficultyFixed:
		cfg.Physics.SpeedIncrement = 0
	}
}

package dotplay

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is returned for option values that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings of the dotplay command. Command-line flags
// override values read from a file.
type Config struct {
	LogLevel string     `yaml:"log_level"` // debug, info, warn, error
	Show     ShowConfig `yaml:"show"`
	Play     PlayConfig `yaml:"play"`
}

// ShowConfig contains settings for still images.
type ShowConfig struct {
	Cols       int     `yaml:"cols"`
	Rows       int     `yaml:"rows"`
	Gamma      float64 `yaml:"gamma"`
	Threshold  int     `yaml:"threshold"` // negative selects Otsu
	Mode       string  `yaml:"mode"`      // threshold, dither, ordered
	Invert     bool    `yaml:"invert"`
	BlankDot   bool    `yaml:"blank_dot"`
	KeepAspect bool    `yaml:"keep_aspect"`
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Sharpen    float64 `yaml:"sharpen"`
	Shrink     bool    `yaml:"shrink"`
}

// PlayConfig contains settings for video playback.
type PlayConfig struct {
	Cols      int           `yaml:"cols"`
	Rows      int           `yaml:"rows"`
	Gamma     float64       `yaml:"gamma"`
	Pool      int           `yaml:"pool"` // frame buffers; the queue holds one fewer
	Color     bool          `yaml:"color"`
	ColorStep int           `yaml:"color_step"`
	BlankDot  bool          `yaml:"blank_dot"`
	OSD       bool          `yaml:"osd"`
	Inline    bool          `yaml:"inline"`
	MinSleep  time.Duration `yaml:"min_sleep"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	static := DefaultStaticOptions()
	return &Config{
		LogLevel: "info",
		Show: ShowConfig{
			Cols:      static.Cols,
			Rows:      static.Rows,
			Gamma:     static.Gamma,
			Threshold: static.Threshold,
			Mode:      string(static.Mode),
			BlankDot:  static.BlankDot,
		},
		Play: PlayConfig{
			Cols:      96,
			Rows:      30,
			Gamma:     2.2,
			Pool:      8,
			ColorStep: 8,
			OSD:       true,
			MinSleep:  time.Millisecond,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Unknown keys are errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (cfg *Config) Validate() error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: %w", cfg.LogLevel, ErrInvalidConfig)
	}

	s := cfg.Show
	if err := validCells(s.Cols, s.Rows); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	if s.Gamma <= 0 {
		return fmt.Errorf("show: gamma %v: %w", s.Gamma, ErrInvalidConfig)
	}
	if s.Threshold > 255 {
		return fmt.Errorf("show: threshold %d: %w", s.Threshold, ErrInvalidConfig)
	}
	if _, err := ParseMode(s.Mode); err != nil {
		return fmt.Errorf("show: %w", err)
	}

	p := cfg.Play
	if err := validCells(p.Cols, p.Rows); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	if p.Gamma <= 0 {
		return fmt.Errorf("play: gamma %v: %w", p.Gamma, ErrInvalidConfig)
	}
	if p.Pool < 2 {
		return fmt.Errorf("play: pool %d must be at least 2: %w", p.Pool, ErrInvalidConfig)
	}
	if p.ColorStep < 1 || p.ColorStep > 255 {
		return fmt.Errorf("play: color_step %d: %w", p.ColorStep, ErrInvalidConfig)
	}
	if p.MinSleep < 0 {
		return fmt.Errorf("play: min_sleep %v: %w", p.MinSleep, ErrInvalidConfig)
	}
	return nil
}

func validCells(cols, rows int) error {
	if cols <= 0 || rows <= 0 || cols*2 > MaxSize || rows*4 > MaxSize {
		return fmt.Errorf("size %d,%d: %w", cols, rows, ErrInvalidConfig)
	}
	return nil
}

// ParseCells parses a "COLS,ROWS" pair such as "80,25".
func ParseCells(s string) (cols, rows int, err error) {
	c, r, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("size %q must be comma separated: %w", s, ErrInvalidConfig)
	}
	if cols, err = strconv.Atoi(strings.TrimSpace(c)); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, ErrInvalidConfig)
	}
	if rows, err = strconv.Atoi(strings.TrimSpace(r)); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, ErrInvalidConfig)
	}
	if err := validCells(cols, rows); err != nil {
		return 0, 0, err
	}
	return cols, rows, nil
}

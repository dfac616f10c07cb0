package collect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultTemplate is the publish path template used when settings do not
// name one. It renumbers frames from FrameStart.
const DefaultTemplate = "{root}/{folder}/publish/{product}/{version}/{product}_{version}.{frame}.{ext}"

// Settings controls how shots are collected from a timeline.
type Settings struct {
	// HandleStart and HandleEnd are the handles requested for every shot.
	// The media may provide fewer.
	HandleStart int `yaml:"handle_start"`
	HandleEnd   int `yaml:"handle_end"`

	// FrameStart is the first published frame of a shot's cut range.
	FrameStart int `yaml:"frame_start"`

	// Template is the publish path template. A template containing
	// {originalBasename} keeps the source frame numbers.
	Template string `yaml:"template"`

	// Review adds a review representation to every shot.
	Review bool `yaml:"review"`

	// Families are tagged on every collected instance.
	Families []string `yaml:"families"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		FrameStart: 1001,
		Template:   DefaultTemplate,
		Families:   []string{"clip"},
	}
}

// LoadSettings decodes YAML settings on top of the defaults. Unknown keys
// are rejected.
func LoadSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// LoadSettingsFile reads settings from a YAML file.
func LoadSettingsFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	return LoadSettings(bytes.NewReader(data))
}

// Validate checks handles and the template.
func (s Settings) Validate() error {
	if s.HandleStart < 0 || s.HandleEnd < 0 {
		return fmt.Errorf("handles must not be negative (got %d, %d)", s.HandleStart, s.HandleEnd)
	}
	if s.Template == "" {
		return fmt.Errorf("template is required")
	}
	return nil
}

// AsMap returns the settings in the shape hashed into session identity.
func (s Settings) AsMap() map[string]any {
	families := make([]any, len(s.Families))
	for i, f := range s.Families {
		families[i] = f
	}
	return map[string]any{
		"handle_start": s.HandleStart,
		"handle_end":   s.HandleEnd,
		"frame_start":  s.FrameStart,
		"template":     s.Template,
		"review":       s.Review,
		"families":     families,
	}
}

// Package prefs persists the pilot's preferences as YAML in the user's home
// directory.
package prefs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/mikehamer/crazypilot/commander"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	dirName  = ".crazypilot"
	fileName = "preferences.yaml"
)

type Preferences struct {
	// ControlMode is stored as the mode index.
	ControlMode int                                          `yaml:"controlMode"`
	Sensitivity commander.Sensitivity                        `yaml:"sensitivity"`
	Settings    map[commander.Sensitivity]commander.Settings `yaml:"settings"`
}

// DefaultPath is ~/.crazypilot/preferences.yaml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName, fileName), nil
}

func Default() *Preferences {
	p := &Preferences{
		ControlMode: commander.DefaultMode.Index(),
		Sensitivity: commander.Slow,
		Settings:    make(map[commander.Sensitivity]commander.Settings),
	}
	for _, s := range commander.Sensitivities() {
		p.Settings[s] = s.DefaultSettings()
	}
	return p
}

// Load reads the preferences at path. A missing file yields the defaults;
// out-of-range values are replaced by their defaults.
func Load(path string) (*Preferences, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "prefs: read")
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrapf(err, "prefs: parse %s", path)
	}

	p.sanitize()
	return p, nil
}

func (p *Preferences) sanitize() {
	if _, err := commander.ParseMode(p.ControlMode); err != nil {
		log.Printf("prefs: stored control mode %d is invalid, using %s", p.ControlMode, commander.DefaultMode)
		p.ControlMode = commander.DefaultMode.Index()
	}
	if p.Sensitivity.Index() < 0 {
		log.Printf("prefs: stored sensitivity %q is invalid, using %s", p.Sensitivity, commander.Slow)
		p.Sensitivity = commander.Slow
	}
	if p.Settings == nil {
		p.Settings = make(map[commander.Sensitivity]commander.Settings)
	}
	for s, settings := range p.Settings {
		if s.Index() < 0 {
			delete(p.Settings, s)
			continue
		}
		// presets other than custom are not user data
		if !s.Editable() {
			settings = s.DefaultSettings()
		}
		if !settings.Finite() {
			log.Printf("prefs: stored %s settings are not numbers, using defaults", s)
			settings = s.DefaultSettings()
		}
		p.Settings[s] = settings.Clamped()
	}
	for _, s := range commander.Sensitivities() {
		if _, ok := p.Settings[s]; !ok {
			p.Settings[s] = s.DefaultSettings()
		}
	}
}

// Save writes the preferences, creating the directory if needed.
func (p *Preferences) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "prefs: create directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "prefs: write")
	}
	return nil
}

func (p *Preferences) Mode() commander.ControlMode {
	return commander.ControlMode(p.ControlMode)
}

// SetMode stores the mode. Tilt is accepted here; whether it can be flown
// depends on the input source.
func (p *Preferences) SetMode(mode commander.ControlMode) error {
	if !mode.Valid() {
		return commander.ErrorInvalidMode
	}
	p.ControlMode = mode.Index()
	return nil
}

// Active returns the settings of the selected sensitivity.
func (p *Preferences) Active() commander.Settings {
	if s, ok := p.Settings[p.Sensitivity]; ok {
		return s
	}
	return p.Sensitivity.DefaultSettings()
}

func (p *Preferences) Select(s commander.Sensitivity) error {
	if s.Index() < 0 {
		return commander.ErrorInvalidSensitivity
	}
	p.Sensitivity = s
	return nil
}

// Update changes the values of an editable sensitivity.
func (p *Preferences) Update(s commander.Sensitivity, settings commander.Settings) error {
	if s.Index() < 0 {
		return commander.ErrorInvalidSensitivity
	}
	if !s.Editable() {
		return commander.ErrorNotEditable
	}
	p.Settings[s] = settings.Clamped()
	return nil
}

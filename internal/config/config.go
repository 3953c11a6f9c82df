package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"cmdpal/internal/domain"
	"cmdpal/internal/eventbus"
	"cmdpal/internal/logging"
	"cmdpal/internal/ui/services/scoring"
)

const (
	currentVersion = 1
	envPrefix      = "CMDPAL"
	fileName       = "palette.toml"
)

// Config is a palette definition
type Config struct {
	Version int             `toml:"version" mapstructure:"version"`
	Palette PaletteSettings `toml:"palette" mapstructure:"palette"`
	Groups  []GroupConfig   `toml:"groups,omitempty" mapstructure:"groups"`
	Items   []ItemConfig    `toml:"items" mapstructure:"items"`
}

// PaletteSettings holds the behavior switches of the palette
type PaletteSettings struct {
	Label                   string `toml:"label" mapstructure:"label"`
	Placeholder             string `toml:"placeholder,omitempty" mapstructure:"placeholder"`
	ShouldFilter            bool   `toml:"should_filter" mapstructure:"should_filter"`
	Loop                    bool   `toml:"loop" mapstructure:"loop"`
	VimBindings             bool   `toml:"vim_bindings" mapstructure:"vim_bindings"`
	DisablePointerSelection bool   `toml:"disable_pointer_selection" mapstructure:"disable_pointer_selection"`
	Scorer                  string `toml:"scorer" mapstructure:"scorer"`
	CacheSize               int    `toml:"cache_size,omitempty" mapstructure:"cache_size"`
}

// GroupConfig declares a group
type GroupConfig struct {
	ID           string `toml:"id" mapstructure:"id"`
	Heading      string `toml:"heading" mapstructure:"heading"`
	Value        string `toml:"value,omitempty" mapstructure:"value"`
	ForceVisible bool   `toml:"force_visible,omitempty" mapstructure:"force_visible"`
}

// ItemConfig declares an item. Run is printed when the item is chosen;
// when empty the item's value is printed instead.
type ItemConfig struct {
	ID           string   `toml:"id,omitempty" mapstructure:"id"`
	Group        string   `toml:"group,omitempty" mapstructure:"group"`
	Text         string   `toml:"text" mapstructure:"text"`
	Value        string   `toml:"value,omitempty" mapstructure:"value"`
	Keywords     []string `toml:"keywords,omitempty" mapstructure:"keywords"`
	Run          string   `toml:"run,omitempty" mapstructure:"run"`
	Disabled     bool     `toml:"disabled,omitempty" mapstructure:"disabled"`
	ForceVisible bool     `toml:"force_visible,omitempty" mapstructure:"force_visible"`
}

// Output is what choosing the item prints
func (i ItemConfig) Output() string {
	if i.Run != "" {
		return i.Run
	}
	if i.Value != "" {
		return i.Value
	}
	return i.Text
}

// RootConfig builds the engine configuration
func (p PaletteSettings) RootConfig() (domain.RootConfig, error) {
	score, err := scoring.ByName(p.Scorer)
	if err != nil {
		return domain.RootConfig{}, err
	}
	if p.CacheSize > 0 {
		if score, err = scoring.Cached(score, p.CacheSize); err != nil {
			return domain.RootConfig{}, err
		}
	}
	return domain.RootConfig{
		Label:                   p.Label,
		ShouldFilter:            p.ShouldFilter,
		Loop:                    p.Loop,
		VimBindings:             p.VimBindings,
		DisablePointerSelection: p.DisablePointerSelection,
		Score:                   score,
	}, nil
}

// Validate checks ids are unique and items reference declared groups
func (c *Config) Validate() error {
	groups := make(map[string]struct{}, len(c.Groups))
	for i, g := range c.Groups {
		if g.ID == "" {
			return errors.WithHint(
				errors.Newf("group %d has no id", i+1),
				"every [[groups]] entry needs an id that items refer to")
		}
		if _, dup := groups[g.ID]; dup {
			return errors.Newf("duplicate group id %q", g.ID)
		}
		groups[g.ID] = struct{}{}
	}

	items := make(map[string]struct{}, len(c.Items))
	for i, it := range c.Items {
		if strings.TrimSpace(it.Text) == "" && it.Value == "" {
			return errors.Newf("item %d has neither text nor value", i+1)
		}
		if it.Group != "" {
			if _, ok := groups[it.Group]; !ok {
				return errors.WithHintf(
					errors.Newf("item %q refers to unknown group %q", it.Text, it.Group),
					"declare it with [[groups]] id = %q", it.Group)
			}
		}
		if it.ID == "" {
			continue
		}
		if _, dup := items[it.ID]; dup {
			return errors.Newf("duplicate item id %q", it.ID)
		}
		items[it.ID] = struct{}{}
	}
	return nil
}

// ConfigService handles palette definition files
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath is the palette file used when none is given
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "cmdpal", fileName)
}

// NewConfigService creates a service for the file at path, or the
// default location when path is empty
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service that announces loads and saves
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads the service's file. A missing file yields the default palette.
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		logging.Info("config: no palette file, using defaults", "path", cs.filePath)
		cfg = DefaultConfig()
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
	} else {
		if cfg, err = cs.LoadFromPath(cs.filePath); err != nil {
			return nil, err
		}
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:   cs.filePath,
			Items:  len(cfg.Items),
			Groups: len(cfg.Groups),
		})
	}
	return cfg, nil
}

// Save writes to the service's file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath reads and validates a palette file. CMDPAL_PALETTE_*
// environment variables override the [palette] table.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.WithHint(
			errors.Newf("config file not found: %s", path),
			"create one with: cmdpal init "+path)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if cfg.Version == 0 {
		cfg.Version = currentVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}

	logging.Debug("config: loaded", "path", path, "items", len(cfg.Items), "groups", len(cfg.Groups))
	return &cfg, nil
}

// SaveToPath writes a palette file
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v, DefaultConfig().Palette)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, p PaletteSettings) {
	v.SetDefault("version", currentVersion)
	v.SetDefault("palette.label", p.Label)
	v.SetDefault("palette.placeholder", p.Placeholder)
	v.SetDefault("palette.should_filter", p.ShouldFilter)
	v.SetDefault("palette.loop", p.Loop)
	v.SetDefault("palette.vim_bindings", p.VimBindings)
	v.SetDefault("palette.disable_pointer_selection", p.DisablePointerSelection)
	v.SetDefault("palette.scorer", p.Scorer)
	v.SetDefault("palette.cache_size", p.CacheSize)
}

// applyEnv applies environment overrides to the palette settings
func (c *Config) applyEnv() error {
	v := newViper()
	setDefaults(v, c.Palette)

	// Unmarshal rather than UnmarshalKey: only leaf lookups see the environment
	var overridden Config
	if err := v.Unmarshal(&overridden); err != nil {
		return errors.Wrap(err, "failed to apply environment overrides")
	}
	c.Palette = overridden.Palette
	return nil
}

// DefaultConfig returns a sample palette
func DefaultConfig() *Config {
	return &Config{
		Version: currentVersion,
		Palette: PaletteSettings{
			Label:        "Command Menu",
			Placeholder:  "Type a command or search...",
			ShouldFilter: true,
			Loop:         true,
			VimBindings:  true,
			Scorer:       "fuzzy",
		},
		Groups: []GroupConfig{
			{ID: "suggestions", Heading: "Suggestions"},
			{ID: "settings", Heading: "Settings"},
		},
		Items: []ItemConfig{
			{Group: "suggestions", Text: "Calendar", Run: "calendar"},
			{Group: "suggestions", Text: "Search Emoji", Keywords: []string{"smiley"}, Run: "emoji"},
			{Group: "suggestions", Text: "Calculator", Keywords: []string{"math"}, Run: "calculator"},
			{Group: "settings", Text: "Profile", Run: "profile"},
			{Group: "settings", Text: "Billing", Keywords: []string{"payment", "invoice"}, Run: "billing"},
			{Group: "settings", Text: "Settings", Keywords: []string{"preferences"}, Run: "settings"},
		},
	}
}

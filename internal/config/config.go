// Package config holds the controller's settings: compiled-in defaults,
// optionally overridden by a YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-lightstrip/internal/effect"
	"github.com/coreman2200/funtimes-lightstrip/internal/encoder"
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

type StripCfg struct {
	Length     int    `yaml:"length" toml:"length"`
	Driver     string `yaml:"driver" toml:"driver"` // "spi" | "console" | "sim"
	SPIPort    string `yaml:"spi_port,omitempty" toml:"spi_port,omitempty"`
	SPIFreqKHz int    `yaml:"spi_freq_khz,omitempty" toml:"spi_freq_khz,omitempty"`
	ColorOrder string `yaml:"color_order" toml:"color_order"`
	Brightness int    `yaml:"brightness" toml:"brightness"` // 0..255
	Reverse    bool   `yaml:"reverse" toml:"reverse"`
}

type PowerCfg struct {
	LimitAmps float64 `yaml:"limit_amps" toml:"limit_amps"`
	ChanmA    float64 `yaml:"chan_ma" toml:"chan_ma"`
	WhiteCap  float64 `yaml:"white_cap" toml:"white_cap"`
	Knee      float64 `yaml:"knee" toml:"knee"`
}

type PinsCfg struct {
	CLK        string `yaml:"clk" toml:"clk"`
	DT         string `yaml:"dt" toml:"dt"`
	SW         string `yaml:"sw" toml:"sw"`
	DebounceMs uint32 `yaml:"debounce_ms" toml:"debounce_ms"`
}

type EncoderCfg struct {
	Max    int             `yaml:"max" toml:"max"`
	Ranges []encoder.Range `yaml:"ranges" toml:"ranges"`
}

// CaseCfg binds an effect to one encoder case.
type CaseCfg struct {
	Case        int `yaml:"case" toml:"case"`
	effect.Spec `yaml:",inline"`
}

type LinkCfg struct {
	// Mode is "always" (treat the controller as connected), "ws" (serve the
	// websocket link) or "never".
	Mode      string      `yaml:"mode" toml:"mode"`
	Addr      string      `yaml:"addr,omitempty" toml:"addr,omitempty"`
	TimeoutMs int         `yaml:"timeout_ms" toml:"timeout_ms"`
	Color     model.Color `yaml:"color" toml:"color"`
}

type MetricsCfg struct {
	Addr string `yaml:"addr,omitempty" toml:"addr,omitempty"`
}

type Config struct {
	LogLevel      string      `yaml:"log_level" toml:"log_level"`
	TickMs        int         `yaml:"tick_ms" toml:"tick_ms"`
	Seed          int64       `yaml:"seed" toml:"seed"`
	ResetOnSelect bool        `yaml:"reset_on_select" toml:"reset_on_select"`
	Strip         StripCfg    `yaml:"strip" toml:"strip"`
	Power         PowerCfg    `yaml:"power" toml:"power"`
	Pins          PinsCfg     `yaml:"pins" toml:"pins"`
	Encoder       EncoderCfg  `yaml:"encoder" toml:"encoder"`
	Default       effect.Spec `yaml:"default" toml:"default"`
	Cases         []CaseCfg   `yaml:"cases" toml:"cases"`
	Link          LinkCfg     `yaml:"link" toml:"link"`
	Metrics       MetricsCfg  `yaml:"metrics" toml:"metrics"`
}

// Default is the stock controller: a 123 pixel GRB strip on a 5V/2.5A
// supply, a 21-detent encoder and four cases.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		TickMs:   2,
		Seed:     1,
		Strip: StripCfg{
			Length:     123,
			Driver:     "spi",
			ColorOrder: "RGB",
			Brightness: 255,
		},
		Power: PowerCfg{LimitAmps: 2.5, ChanmA: 20, WhiteCap: 3, Knee: 0.9},
		Pins:  PinsCfg{CLK: "GPIO17", DT: "GPIO27", SW: "GPIO22", DebounceMs: 5},
		Encoder: EncoderCfg{
			Max:    encoder.DefaultMax,
			Ranges: encoder.DefaultRanges(),
		},
		Default: effect.Spec{Effect: "rainbow"},
		Cases: []CaseCfg{
			{Case: 1, Spec: effect.Spec{Effect: "strobe", Colors: []model.Color{model.Red}, IntervalMs: effect.Ms(100)}},
			{Case: 2, Spec: effect.Spec{Effect: "wave", Colors: []model.Color{model.Blue}, Wavelength: 20, IntervalMs: effect.Ms(30)}},
			{Case: 3, Spec: effect.Spec{Effect: "strobe", Colors: []model.Color{model.Green}, IntervalMs: effect.Ms(150)}},
			{Case: 4, Spec: effect.Spec{Effect: "rainbow"}},
		},
		Link:    LinkCfg{Mode: "always", Addr: ":8080", TimeoutMs: 1000, Color: model.Green},
		Metrics: MetricsCfg{},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// a file that sets cases replaces the default list
		c.Cases = nil
		err = yaml.Unmarshal(b, c)
	case ".toml":
		c.Cases = nil
		err = toml.Unmarshal(b, c)
	default:
		return nil, fmt.Errorf("config %s: unknown format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if len(c.Cases) == 0 {
		c.Cases = Default().Cases
	}
	return c, c.Validate()
}

// Save writes c as YAML, or TOML when path ends in .toml.
func Save(path string, c *Config) error {
	var b []byte
	var err error
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		b, err = toml.Marshal(c)
	} else {
		b, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks what can be checked without touching hardware.
func (c *Config) Validate() error {
	var errs []error
	if c.Strip.Length <= 0 {
		errs = append(errs, fmt.Errorf("strip.length %d must be positive", c.Strip.Length))
	}
	if c.Strip.Brightness < 0 || c.Strip.Brightness > 255 {
		errs = append(errs, fmt.Errorf("strip.brightness %d outside 0..255", c.Strip.Brightness))
	}
	switch c.Strip.Driver {
	case "spi", "console", "sim":
	default:
		errs = append(errs, fmt.Errorf("strip.driver %q: want spi, console or sim", c.Strip.Driver))
	}
	switch c.Link.Mode {
	case "always", "ws", "never":
	default:
		errs = append(errs, fmt.Errorf("link.mode %q: want always, ws or never", c.Link.Mode))
	}
	if c.TickMs <= 0 {
		errs = append(errs, fmt.Errorf("tick_ms %d must be positive", c.TickMs))
	}
	if _, err := c.CaseTable(); err != nil {
		errs = append(errs, err)
	}
	seen := map[int]bool{}
	for _, cc := range c.Cases {
		if seen[cc.Case] {
			errs = append(errs, fmt.Errorf("case %d bound twice", cc.Case))
		}
		seen[cc.Case] = true
	}
	return errors.Join(errs...)
}

// CaseTable builds the encoder partition.
func (c *Config) CaseTable() (*encoder.CaseTable, error) {
	t, err := encoder.NewCaseTable(c.Encoder.Max, c.Encoder.Ranges...)
	if err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	return t, nil
}

// BudgetmA is the strip's current budget; 0 disables limiting.
func (p PowerCfg) BudgetmA() float64 {
	return p.LimitAmps * 1000
}

// Package config reads device descriptions for AD7745 sensors.
//
//	devices:
//	  - id: cap0
//	    type: ad7745
//	    bus_ref: {type: i2c, id: "1"}
//	    params:
//	      clock_hz: 400000
//	      input: cin1
//	      filter_hz: 11
//	      timeout: 5s
package config

import (
	"os"
	"time"

	"ad7745-go/drivers/ad7745"
	"ad7745-go/errcode"

	"gopkg.in/yaml.v3"
)

// DeviceTypeAD7745 is the only device type understood here.
const DeviceTypeAD7745 = "ad7745"

// File is the top-level document.
type File struct {
	Devices []Device `yaml:"devices" json:"devices"`
}

// Device describes one sensor and the bus it hangs off.
type Device struct {
	ID     string       `yaml:"id" json:"id"`
	Type   string       `yaml:"type" json:"type"`
	BusRef BusRef       `yaml:"bus_ref" json:"bus_ref"`
	Params AD7745Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// BusRef identifies a named bus instance, e.g. {i2c, "1"} or {mcp2221, "0"}.
type BusRef struct {
	Type string `yaml:"type" json:"type"`
	ID   string `yaml:"id" json:"id"`
}

// AD7745Params holds optional driver settings; zero values select defaults.
type AD7745Params struct {
	Address    uint16        `yaml:"address,omitempty" json:"address,omitempty"`
	ClockHz    int           `yaml:"clock_hz,omitempty" json:"clock_hz,omitempty"`
	Input      string        `yaml:"input,omitempty" json:"input,omitempty"`
	FilterHz   int           `yaml:"filter_hz,omitempty" json:"filter_hz,omitempty"`
	SingleShot bool          `yaml:"single_shot,omitempty" json:"single_shot,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	DacFloor   int           `yaml:"dac_floor,omitempty" json:"dac_floor,omitempty"`
}

// Defaults applied when params leave a field empty.
const (
	defaultInput    = "cin1"
	defaultFilterHz = 11
)

// Load reads and parses a YAML file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a YAML document and validates every device in it.
func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "config.Parse", Err: err}
	}
	seen := make(map[string]bool, len(f.Devices))
	for _, d := range f.Devices {
		if d.ID == "" {
			return nil, errcode.New(errcode.InvalidParams, "config.Parse", "device without id")
		}
		if seen[d.ID] {
			return nil, errcode.New(errcode.InvalidParams, "config.Parse", "duplicate device id "+d.ID)
		}
		seen[d.ID] = true
		if _, _, err := d.AD7745(); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// Find returns the device with id.
func (f *File) Find(id string) (Device, bool) {
	for _, d := range f.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// AD7745 maps the params onto a validated driver config and initial setup.
// Logger, Indicator and Now are left for the caller.
func (d Device) AD7745() (ad7745.Config, ad7745.Setup, error) {
	op := "config.Device(" + d.ID + ")"
	if d.Type != DeviceTypeAD7745 {
		return ad7745.Config{}, ad7745.Setup{}, errcode.New(errcode.Unsupported, op, "device type "+d.Type)
	}
	if d.BusRef.Type == "" {
		return ad7745.Config{}, ad7745.Setup{}, errcode.New(errcode.InvalidParams, op, "missing bus_ref")
	}
	p := d.Params

	cfg := ad7745.DefaultConfig()
	if p.Address != 0 {
		cfg.Address = p.Address
	}
	if p.ClockHz != 0 {
		cfg.ClockHz = p.ClockHz
	}
	if p.Timeout != 0 {
		cfg.Timeout = p.Timeout
	}
	cfg.SingleShot = p.SingleShot
	if err := cfg.Validate(); err != nil {
		return ad7745.Config{}, ad7745.Setup{}, err
	}

	input := p.Input
	if input == "" {
		input = defaultInput
	}
	in, err := ad7745.ParseCapInput(input)
	if err != nil {
		return ad7745.Config{}, ad7745.Setup{}, err
	}
	hz := p.FilterHz
	if hz == 0 {
		hz = defaultFilterHz
	}
	flt, err := ad7745.CapFilterFromHz(hz)
	if err != nil {
		return ad7745.Config{}, ad7745.Setup{}, err
	}
	if p.DacFloor < 0 || p.DacFloor > ad7745.DacCodeMax {
		return ad7745.Config{}, ad7745.Setup{}, errcode.New(errcode.InvalidParams, op, "dac_floor outside 0..127")
	}
	return cfg, ad7745.Setup{Input: in, Filter: flt}, nil
}

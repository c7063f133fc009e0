// Package config holds the persistent tuning parameters and the daemon
// configuration file.
package config

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Params is the persistent parameter record. Its binary form is the nine
// fields below packed in order as little-endian float64, read from stable
// storage at boot.
type Params struct {
	MaxWheelSpeed float64 `yaml:"max_wheel_speed"`
	WheelRadius   float64 `yaml:"wheel_radius"`
	RobotRadius   float64 `yaml:"robot_radius"`

	KP float64 `yaml:"kp"`
	KI float64 `yaml:"ki"`
	KD float64 `yaml:"kd"`

	FrictionForward float64 `yaml:"friction_forward"`
	FrictionStrafe  float64 `yaml:"friction_strafe"`
	FrictionAngular float64 `yaml:"friction_angular"`
}

// ParamsSize is the packed size of a Params record in bytes.
const ParamsSize = 9 * 8

// DefaultParams returns the stock tuning: closed-loop disabled until a max
// speed is measured or configured, default PID gains, no early-release
// friction compensation.
func DefaultParams() Params {
	return Params{
		WheelRadius: 0.05,
		RobotRadius: 0.15,
		KP:          1.4,
		KI:          0.5,
		KD:          0.8,
	}
}

// ReadParams decodes a packed parameter record.
func ReadParams(r io.Reader) (Params, error) {
	var p Params
	if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
		return Params{}, fmt.Errorf("read params: %w", err)
	}
	return p, nil
}

// WriteParams encodes a packed parameter record.
func WriteParams(w io.Writer, p Params) error {
	if err := binary.Write(w, binary.LittleEndian, &p); err != nil {
		return fmt.Errorf("write params: %w", err)
	}
	return nil
}

// LoadParams reads a packed parameter record from a file. A missing file
// yields the defaults.
func LoadParams(path string) (Params, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DefaultParams(), nil
	}
	if err != nil {
		return Params{}, fmt.Errorf("open params %q: %w", path, err)
	}
	defer f.Close()
	return ReadParams(f)
}

// SaveParams writes a packed parameter record to a file.
func SaveParams(path string, p Params) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create params %q: %w", path, err)
	}
	if err := WriteParams(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

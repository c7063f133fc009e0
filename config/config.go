package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DriverWiring selects how a wheel's H-bridge is connected.
type DriverWiring string

const (
	// WiringDualPWM drives the bridge with PWM on both inputs.
	WiringDualPWM DriverWiring = "dual-pwm"
	// WiringDirPWM drives magnitude on one PWM pin and encodes direction
	// on two digital pins.
	WiringDirPWM DriverWiring = "dir-pwm"
)

// WheelConfig assigns the pins of one wheel. Pin names are looked up
// through the host GPIO registry (e.g. "GPIO13").
type WheelConfig struct {
	Wiring DriverWiring `yaml:"wiring"`

	// PinA and PinB are the bridge inputs: PWM channels for dual-pwm,
	// digital direction pins for dir-pwm.
	PinA string `yaml:"pin_a"`
	PinB string `yaml:"pin_b"`
	// PWM is the magnitude pin, used by dir-pwm wiring only.
	PWM string `yaml:"pwm,omitempty"`

	// EncoderA and EncoderB are the quadrature channels.
	EncoderA string `yaml:"encoder_a"`
	EncoderB string `yaml:"encoder_b"`
}

// SerialConfig configures the serial command ingress.
type SerialConfig struct {
	Enabled bool   `yaml:"enabled"`
	Device  string `yaml:"device"`
	Baud    int    `yaml:"baud"`
}

// MQTTConfig configures the MQTT command ingress.
type MQTTConfig struct {
	Enabled bool   `yaml:"enabled"`
	Broker  string `yaml:"broker"`
	Topic   string `yaml:"topic"`
}

// Config is the daemon configuration file.
type Config struct {
	// ParamsPath points at the packed parameter record.
	ParamsPath string `yaml:"params_path"`

	// Params is used when ParamsPath is empty. When ParamsPath is set, the
	// packed record replaces it; a missing file there yields DefaultParams.
	Params Params `yaml:"params"`

	// LoopPeriodMS is the control loop period in milliseconds.
	LoopPeriodMS int `yaml:"loop_period_ms"`

	// PWMFrequency is the H-bridge PWM frequency in Hz.
	PWMFrequency uint32 `yaml:"pwm_frequency"`

	Right WheelConfig `yaml:"right"`
	Back  WheelConfig `yaml:"back"`
	Left  WheelConfig `yaml:"left"`

	Serial SerialConfig `yaml:"serial"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
}

// Default returns a runnable baseline configuration.
func Default() Config {
	return Config{
		Params:       DefaultParams(),
		LoopPeriodMS: 10,
		PWMFrequency: 20000,
		Serial:       SerialConfig{Device: "/dev/ttyAMA0", Baud: 115200},
		MQTT:         MQTTConfig{Broker: "tcp://localhost:1883", Topic: "omnibase/command"},
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

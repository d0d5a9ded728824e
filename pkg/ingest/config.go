package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agrisync/agrisync/pkg/errors"
	"github.com/agrisync/agrisync/pkg/logging"
)

// SinkType selects where ingested documents are delivered.
type SinkType string

const (
	SinkTypeMemory SinkType = "memory"
	SinkTypeStdout SinkType = "stdout"
)

// FileConfig represents the configuration stored in a file
type FileConfig struct {
	Port         int      `json:"port" yaml:"port"`
	ReadTimeout  Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout" yaml:"write_timeout"`

	Sink           SinkType `json:"sink" yaml:"sink"`
	MemoryCapacity int      `json:"memory_capacity" yaml:"memory_capacity"`

	// ConfirmPersistence re-reads every document after sending it.
	ConfirmPersistence bool `json:"confirm_persistence" yaml:"confirm_persistence"`
	// StampDates fills dateCreated/dateModified on flat input that lacks them.
	StampDates bool `json:"stamp_dates" yaml:"stamp_dates"`

	Delegation DelegationConfig `json:"delegation" yaml:"delegation"`
	Auth       AuthConfig       `json:"auth" yaml:"auth"`
	Logging    logging.Config   `json:"logging" yaml:"logging"`
}

// DelegationConfig configures the local authorization registry.
type DelegationConfig struct {
	// StorePath is the evidence file; empty keeps evidence in memory.
	StorePath      string   `json:"store_path" yaml:"store_path"`
	ReloadInterval Duration `json:"reload_interval" yaml:"reload_interval"`
	PolicyIssuer   string   `json:"policy_issuer" yaml:"policy_issuer"`
	// AccessSubject is written as target.accessSubject on stored policies
	// unless the request names one. Empty means all users.
	AccessSubject string `json:"access_subject" yaml:"access_subject"`
}

// AuthConfig controls bearer token checks on the API routes.
type AuthConfig struct {
	Required bool `json:"required" yaml:"required"`
	// PublicKeyPath verifies bearer tokens when set; otherwise only their
	// presence is checked.
	PublicKeyPath string `json:"public_key_path,omitempty" yaml:"public_key_path,omitempty"`
}

// Duration is a time.Duration written as a string such as "15s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// DefaultFileConfig returns a default file configuration
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Port:           8080,
		ReadTimeout:    Duration{15 * time.Second},
		WriteTimeout:   Duration{15 * time.Second},
		Sink:           SinkTypeMemory,
		MemoryCapacity: 1024,
		StampDates:     true,
		Delegation: DelegationConfig{
			ReloadInterval: Duration{time.Minute},
			PolicyIssuer:   "EU.EORI.AGRISYNC",
		},
		Logging: *logging.DefaultConfig(),
	}
}

// Validate checks the configuration for values the server cannot start with.
func (c *FileConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.NewInvalidConfig("port must be between 1 and 65535, got %d", c.Port)
	}
	switch c.Sink {
	case SinkTypeMemory, SinkTypeStdout:
	default:
		return errors.New(errors.ErrCodeUnsupportedConfig, fmt.Sprintf("unsupported sink type: %s", c.Sink))
	}
	if c.MemoryCapacity < 0 {
		return errors.NewInvalidConfig("memory_capacity cannot be negative")
	}
	if c.ReadTimeout.Duration < 0 || c.WriteTimeout.Duration < 0 {
		return errors.NewInvalidConfig("timeouts cannot be negative")
	}
	if c.Delegation.PolicyIssuer == "" {
		return errors.New(errors.ErrCodeMissingConfig, "delegation.policy_issuer cannot be empty")
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFileConfig loads configuration from a JSON or YAML file. Values absent
// from the file keep their defaults.
func LoadFileConfig(configPath string) (*FileConfig, error) {
	config := DefaultFileConfig()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(configPath) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// SaveFileConfig saves configuration to a file, as YAML when the extension
// asks for it and JSON otherwise.
func SaveFileConfig(config *FileConfig, configPath string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(configPath) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

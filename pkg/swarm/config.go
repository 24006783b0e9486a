package swarm

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchema string

var (
	configSchemaOnce     sync.Once
	configSchemaCompiled *jsonschema.Schema
	configSchemaErr      error
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	configSchemaOnce.Do(func() {
		configSchemaCompiled, configSchemaErr = jsonschema.CompileString("config.schema.json", configSchema)
	})
	return configSchemaCompiled, configSchemaErr
}

type Config struct {
	// Vision
	VisionRange float64 `json:"visionRange" toml:"visionRange"`

	// Space and movement rules
	Dimension    int    `json:"dimension" toml:"dimension"`       // 1 (line) or 2 (plane)
	NextPosition string `json:"nextPosition" toml:"nextPosition"` // "all" or extremes
	Mode         string `json:"mode" toml:"mode"`                 // "center" or "connectivity"
	Index        string `json:"index" toml:"index"`               // "grid", "rtree" or "scan"
	Seed         uint64 `json:"seed" toml:"seed"`                 // 0 picks a random seed

	// Driver
	BatchSize int    `json:"batchSize" toml:"batchSize"` // generations requested per batch
	Listen    string `json:"listen" toml:"listen"`
	StaticDir string `json:"staticDir" toml:"staticDir"`
}

func DefaultConfig() *Config {
	return &Config{
		VisionRange:  100,
		Dimension:    int(Line),
		NextPosition: "",
		Mode:         string(ModeConnectivity),
		Index:        string(IndexGrid),
		BatchSize:    10,
		Listen:       ":8080",
	}
}

// LoadConfig reads a TOML (.toml) or JSON file on top of DefaultConfig and
// validates the result against the embedded schema.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".toml":
		if _, err := toml.DecodeFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
	default:
		b, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config json: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against the embedded schema.
func (c *Config) Validate() error {
	sch, err := compiledConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	// round trip through JSON so the validator sees plain JSON values
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

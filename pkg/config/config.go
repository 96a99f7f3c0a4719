package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DeckerSU/equihashverify/pkg/core/equihash"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. EHVERIFY_EQUIHASH_N.
const EnvPrefix = "EHVERIFY"

// Config holds the verifier service settings.
type Config struct {
	Equihash EquihashConfig `mapstructure:"equihash"`

	// Workers bounds concurrent verifications in a batch. Zero means GOMAXPROCS.
	Workers int `mapstructure:"workers"`

	Cache CacheConfig `mapstructure:"cache"`
	RPC   RPCConfig   `mapstructure:"rpc"`
	Log   LogConfig   `mapstructure:"log"`
}

// EquihashConfig selects the parameters used when a request does not name any.
type EquihashConfig struct {
	N uint32 `mapstructure:"n"`
	K uint32 `mapstructure:"k"`
}

// CacheConfig controls the verdict store.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Path of the badger directory. Empty keeps verdicts in memory only.
	Path string `mapstructure:"path"`
}

type RPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default is the configuration used when nothing overrides it.
var Default = Config{
	Equihash: EquihashConfig{
		N: equihash.DefaultN,
		K: equihash.DefaultK,
	},
	Workers: 0,
	Cache: CacheConfig{
		Enabled: false,
		Path:    "",
	},
	RPC: RPCConfig{
		Addr: ":8232",
	},
	Log: LogConfig{
		Level: "info",
	},
}

// Load reads configuration from defaults, the YAML file at path (if path is
// not empty) and EHVERIFY_* environment variables, in increasing priority.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("equihash.n", Default.Equihash.N)
	v.SetDefault("equihash.k", Default.Equihash.K)
	v.SetDefault("workers", Default.Workers)
	v.SetDefault("cache.enabled", Default.Cache.Enabled)
	v.SetDefault("cache.path", Default.Cache.Path)
	v.SetDefault("rpc.addr", Default.RPC.Addr)
	v.SetDefault("log.level", Default.Log.Level)
}

// Validate checks that the configuration can be used to build verifiers.
func (c *Config) Validate() error {
	if _, err := equihash.LookupParams(c.Equihash.N, c.Equihash.K); err != nil {
		return fmt.Errorf("config: default parameters: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if c.RPC.Addr == "" {
		return errors.New("config: rpc.addr must not be empty")
	}
	return nil
}

// Params returns the default Equihash parameters named by c.
func (c *Config) Params() (equihash.Params, error) {
	return equihash.LookupParams(c.Equihash.N, c.Equihash.K)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hyperledger-labs/aero-relay/checkpoint"
	"github.com/hyperledger-labs/aero-relay/core"
	"github.com/spf13/viper"
)

const EnvPrefix = "AERO"

type Config struct {
	Global     GlobalConfig               `mapstructure:"global" yaml:"global" json:"global"`
	Checkpoint CheckpointConfig           `mapstructure:"checkpoint" yaml:"checkpoint" json:"checkpoint"`
	Transport  TransportConfig            `mapstructure:"transport" yaml:"transport" json:"transport"`
	Relays     []RelayPairConfig          `mapstructure:"relays" yaml:"relays" json:"relays"`
	Presets    map[string]RelayPairConfig `mapstructure:"presets" yaml:"presets,omitempty" json:"presets,omitempty"`

	// ConfigPath is the file the config was loaded from
	ConfigPath string `mapstructure:"-" yaml:"-" json:"-"`
}

type GlobalConfig struct {
	RPCTimeout          string  `mapstructure:"rpc_timeout" yaml:"rpc_timeout" json:"rpc_timeout"`
	HeightRetryInterval string  `mapstructure:"height_retry_interval" yaml:"height_retry_interval" json:"height_retry_interval"`
	HeightRetryJitter   float64 `mapstructure:"height_retry_jitter" yaml:"height_retry_jitter" json:"height_retry_jitter"`
	BlockRetryAttempts  uint    `mapstructure:"block_retry_attempts" yaml:"block_retry_attempts" json:"block_retry_attempts"`
	BlockRetryDelay     string  `mapstructure:"block_retry_delay" yaml:"block_retry_delay" json:"block_retry_delay"`
	BlockRetryMaxJitter string  `mapstructure:"block_retry_max_jitter" yaml:"block_retry_max_jitter" json:"block_retry_max_jitter"`
	BlockInterval       string  `mapstructure:"block_interval" yaml:"block_interval" json:"block_interval"`
	PollInterval        string  `mapstructure:"poll_interval" yaml:"poll_interval" json:"poll_interval"`

	// defaults for relays that leave them empty
	Prover             string `mapstructure:"prover" yaml:"prover" json:"prover"`
	PacketDataEncoding string `mapstructure:"packet_data_encoding" yaml:"packet_data_encoding" json:"packet_data_encoding"`
	Signer             string `mapstructure:"signer" yaml:"signer,omitempty" json:"signer,omitempty"`

	Log LogConfig `mapstructure:"log" yaml:"log" json:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	Output string `mapstructure:"output" yaml:"output" json:"output"`
	// File receives a copy of every record when set
	File string `mapstructure:"file" yaml:"file,omitempty" json:"file,omitempty"`
}

type CheckpointConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend" json:"backend"`
	Dir     string `mapstructure:"dir" yaml:"dir,omitempty" json:"dir,omitempty"`
	Resume  bool   `mapstructure:"resume" yaml:"resume" json:"resume"`
}

type TransportConfig struct {
	// Endpoint is the address of the remote submitter; messages are only logged when empty
	Endpoint           string `mapstructure:"endpoint" yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	ListenAddr         string `mapstructure:"listen_addr" yaml:"listen_addr" json:"listen_addr"`
	CertFile           string `mapstructure:"cert_file" yaml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile            string `mapstructure:"key_file" yaml:"key_file,omitempty" json:"key_file,omitempty"`
	CAFile             string `mapstructure:"ca_file" yaml:"ca_file,omitempty" json:"ca_file,omitempty"`
	ServerName         string `mapstructure:"server_name" yaml:"server_name,omitempty" json:"server_name,omitempty"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
	// Timeout bounds a single delivery call; global.rpc_timeout applies when empty
	Timeout string `mapstructure:"timeout" yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

func (c TransportConfig) Validate() error {
	if c.Timeout == "" {
		return nil
	}
	if v, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("config attribute \"transport.timeout\" is invalid: %w", err)
	} else if v <= 0 {
		return fmt.Errorf("config attribute \"transport.timeout\" must be positive: %v", v)
	}
	return nil
}

// DeliverTimeout returns the transport timeout, falling back to global.rpc_timeout.
func (c Config) DeliverTimeout() time.Duration {
	if d := durationOrZero(c.Transport.Timeout); d > 0 {
		return d
	}
	return c.Global.GetRPCTimeout()
}

func DefaultConfig(configPath string) Config {
	return Config{
		Global:     newDefaultGlobalConfig(),
		Checkpoint: CheckpointConfig{Backend: checkpoint.BackendMemDB, Resume: true},
		Transport:  TransportConfig{ListenAddr: "0.0.0.0:4433"},
		Relays:     []RelayPairConfig{},
		Presets:    map[string]RelayPairConfig{},
		ConfigPath: configPath,
	}
}

// newDefaultGlobalConfig returns a global config with defaults set
func newDefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		RPCTimeout:          "10s",
		HeightRetryInterval: "10s",
		HeightRetryJitter:   0.2,
		BlockRetryAttempts:  5,
		BlockRetryDelay:     "400ms",
		BlockRetryMaxJitter: "400ms",
		BlockInterval:       "200ms",
		PollInterval:        "6s",
		Prover:              "none",
		PacketDataEncoding:  string(core.PacketDataEncodingRaw),
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads the config file at path. Values can be overridden by AERO_* environment
// variables, e.g. AERO_GLOBAL_POLL_INTERVAL; the default signer is also read from
// AERO_SIGNER or RELAYER_SIGNER.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("global.signer", EnvPrefix+"_SIGNER", "RELAYER_SIGNER"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig(path)
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if signer := v.GetString("global.signer"); signer != "" {
		cfg.Global.Signer = signer
	}
	return &cfg, nil
}

// LoadOrDefault loads the config at path, or returns the default config when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig(path)
		return &cfg, nil
	}
	return Load(path)
}

// PollerConfig converts the global timings. Call Validate first.
func (c GlobalConfig) PollerConfig(resume bool) core.PollerConfig {
	return core.PollerConfig{
		HeightRetryInterval: durationOrZero(c.HeightRetryInterval),
		HeightRetryJitter:   c.HeightRetryJitter,
		BlockRetryAttempts:  c.BlockRetryAttempts,
		BlockRetryDelay:     durationOrZero(c.BlockRetryDelay),
		BlockRetryMaxJitter: durationOrZero(c.BlockRetryMaxJitter),
		BlockInterval:       durationOrZero(c.BlockInterval),
		PollInterval:        durationOrZero(c.PollInterval),
		Resume:              resume,
	}
}

func (c GlobalConfig) GetRPCTimeout() time.Duration {
	return durationOrZero(c.RPCTimeout)
}

func (c GlobalConfig) Validate() error {
	var errs []error
	for _, d := range []struct{ key, value string }{
		{"rpc_timeout", c.RPCTimeout},
		{"height_retry_interval", c.HeightRetryInterval},
		{"block_retry_delay", c.BlockRetryDelay},
		{"block_retry_max_jitter", c.BlockRetryMaxJitter},
		{"block_interval", c.BlockInterval},
		{"poll_interval", c.PollInterval},
	} {
		if v, err := time.ParseDuration(d.value); err != nil {
			errs = append(errs, fmt.Errorf("config attribute \"global.%s\" is invalid: %w", d.key, err))
		} else if v < 0 {
			errs = append(errs, fmt.Errorf("config attribute \"global.%s\" is negative: %v", d.key, v))
		}
	}
	if c.RPCTimeout != "" && durationOrZero(c.RPCTimeout) == 0 {
		errs = append(errs, fmt.Errorf("config attribute \"global.rpc_timeout\" is zero"))
	}
	if c.HeightRetryJitter < 0 || c.HeightRetryJitter >= 1 {
		errs = append(errs, fmt.Errorf("config attribute \"global.height_retry_jitter\" must be in [0, 1): %v", c.HeightRetryJitter))
	}
	if c.BlockRetryAttempts == 0 {
		errs = append(errs, fmt.Errorf("config attribute \"global.block_retry_attempts\" is zero"))
	}
	if _, err := core.ParsePacketDataEncoding(c.PacketDataEncoding); err != nil {
		errs = append(errs, fmt.Errorf("config attribute \"global.packet_data_encoding\" is invalid: %w", err))
	}
	return errors.Join(errs...)
}

func (c CheckpointConfig) Validate() error {
	switch c.Backend {
	case "", checkpoint.BackendMemDB:
		return nil
	case checkpoint.BackendGoLevelDB:
		if c.Dir == "" {
			return fmt.Errorf("config attribute \"checkpoint.dir\" is empty")
		}
		return nil
	default:
		return fmt.Errorf("config attribute \"checkpoint.backend\" is unexpected: %s", c.Backend)
	}
}

// Validate checks the process-wide sections. Relay pairs are checked one by one by ResolveRelays.
func (c Config) Validate() error {
	return errors.Join(c.Global.Validate(), c.Checkpoint.Validate(), c.Transport.Validate())
}

func durationOrZero(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/terminus-io/hccdu/pkg/threshold"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix         = "HCCDU"
	DefaultConfigPath = "/etc/hcc-du/config.yaml"

	BackendRQuota = "rquota"
	BackendLustre = "lustre"
	BackendBeeGFS = "beegfs"
)

type MountConfig struct {
	Name    string `mapstructure:"name" yaml:"name" validate:"required"`
	Path    string `mapstructure:"path" yaml:"path,omitempty" validate:"required_without=Home"`
	Backend string `mapstructure:"backend" yaml:"backend" validate:"required,oneof=rquota lustre beegfs"`
	// Binary overrides the backend's command line tool.
	Binary string `mapstructure:"binary" yaml:"binary,omitempty"`
	// Home resolves Path to the mount holding the caller's home directory.
	Home bool `mapstructure:"home" yaml:"home,omitempty"`
}

type LoginConfig struct {
	RemediationMount string `mapstructure:"remediation_mount" yaml:"remediation_mount"`
	Message          string `mapstructure:"message" yaml:"message"`
}

type Config struct {
	Site         string           `mapstructure:"site" yaml:"site" validate:"required"`
	Mounts       []MountConfig    `mapstructure:"mounts" yaml:"mounts" validate:"required,min=1,unique=Name,dive"`
	Thresholds   threshold.Config `mapstructure:"thresholds" yaml:"thresholds"`
	Login        LoginConfig      `mapstructure:"login" yaml:"login"`
	GroupHelper  string           `mapstructure:"group_helper" yaml:"group_helper"`
	PurgeDir     string           `mapstructure:"purge_dir" yaml:"purge_dir"`
	FetchTimeout time.Duration    `mapstructure:"fetch_timeout" yaml:"fetch_timeout" validate:"gt=0"`
	MetricsFile  string           `mapstructure:"metrics_file" yaml:"metrics_file,omitempty"`
}

// Mount returns the mount configured under name.
func (c *Config) Mount(name string) (MountConfig, bool) {
	for _, m := range c.Mounts {
		if m.Name == name {
			return m, true
		}
	}
	return MountConfig{}, false
}

// Load reads configuration from path (DefaultConfigPath when empty), then
// HCCDU_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load on a caller supplied viper instance, typically one with
// command line flags already bound.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	setupViper(v, path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SetDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, path string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultConfigPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// scalar keys must be known to viper for AutomaticEnv to reach them
	d := Default()
	v.SetDefault("site", d.Site)
	v.SetDefault("group_helper", d.GroupHelper)
	v.SetDefault("purge_dir", d.PurgeDir)
	v.SetDefault("fetch_timeout", d.FetchTimeout)
	v.SetDefault("metrics_file", d.MetricsFile)
	// depends on the configured mounts, resolved in SetDefaults
	_ = v.BindEnv("login.remediation_mount")
	v.SetDefault("login.message", d.Login.Message)
	for _, cat := range []string{"user", "group", "filesystem"} {
		r := d.Thresholds.User
		switch cat {
		case "group":
			r = d.Thresholds.Group
		case "filesystem":
			r = d.Thresholds.Filesystem
		}
		v.SetDefault("thresholds."+cat+".blocks", r.Blocks)
		v.SetDefault("thresholds."+cat+".inodes", r.Inodes)
	}
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		percentDecodeHook(),
	)
}

// percentDecodeHook accepts ratios written as "75%".
func percentDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		if !strings.HasSuffix(s, "%") {
			return data, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage %q: %w", s, err)
		}
		return f / 100, nil
	}
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

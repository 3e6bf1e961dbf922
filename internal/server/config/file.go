package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hradmin/internal/flagx"
	"github.com/dmitrijs2005/hradmin/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration, used only for
// unmarshalling. Interval fields use timex.Duration so both "10s" and
// integer nanoseconds are accepted. Zero values leave the target field as is.
type FileConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN       string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey         string         `json:"secret_key" yaml:"secret_key"`
	TokenIssuer       string         `json:"token_issuer" yaml:"token_issuer"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
	LogFormat         string         `json:"log_format" yaml:"log_format"`
	DBMaxOpenConns    int            `json:"db_max_open_conns" yaml:"db_max_open_conns"`
	DBMaxIdleConns    int            `json:"db_max_idle_conns" yaml:"db_max_idle_conns"`
	DBConnMaxLifetime timex.Duration `json:"db_conn_max_lifetime" yaml:"db_conn_max_lifetime"`
	DBConnMaxIdleTime timex.Duration `json:"db_conn_max_idle_time" yaml:"db_conn_max_idle_time"`
	DBQueryTimeout    timex.Duration `json:"db_query_timeout" yaml:"db_query_timeout"`
	CORSAllowOrigin   string         `json:"cors_allow_origin" yaml:"cors_allow_origin"`
}

// parseFile loads values from the file named by -c/-config into config.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
// Without the flag nothing is loaded.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.CORSAllowOrigin, c.CORSAllowOrigin)

	if c.DBMaxOpenConns != 0 {
		config.DBMaxOpenConns = c.DBMaxOpenConns
	}
	if c.DBMaxIdleConns != 0 {
		config.DBMaxIdleConns = c.DBMaxIdleConns
	}
	if c.DBConnMaxLifetime.Duration != 0 {
		config.DBConnMaxLifetime = c.DBConnMaxLifetime.Duration
	}
	if c.DBConnMaxIdleTime.Duration != 0 {
		config.DBConnMaxIdleTime = c.DBConnMaxIdleTime.Duration
	}
	if c.DBQueryTimeout.Duration != 0 {
		config.DBQueryTimeout = c.DBQueryTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

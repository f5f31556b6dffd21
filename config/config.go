// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package config loads tool configuration from files and the environment.
package config

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// Config holds defaults for the rowio CLI.
type Config struct {
	// Compression is the codec used when writing files, unless overridden
	// by a flag. One of uncompressed, snappy, gzip, zstd, lz4.
	Compression string `mapstructure:"compression"`

	// LogLevel is the slog level name: debug, info, warn, or error.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from an optional config file in the working
// directory and from environment variables. Environment variables use the
// prefix "ROWIO"; for example, "compression" becomes "ROWIO_COMPRESSION".
func Load() (*Config, error) {
	cfg := &Config{
		Compression: "zstd",
		LogLevel:    "info",
	}

	v := viper.New()
	v.SetConfigName("rowio")
	v.AddConfigPath(".")
	v.SetEnvPrefix("ROWIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(field.Name)
		}
		key := append(parts, tag)
		if field.Type.Kind() == reflect.Struct {
			bindEnvs(v, rv.Field(i).Addr().Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}

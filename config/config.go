// Copyright 2021 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/usercf/dataset"
	"github.com/gorse-io/usercf/storage"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config is the configuration for a recommendation run.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Output    OutputConfig    `mapstructure:"output"`
}

// DataConfig is the configuration for the rating source.
type DataConfig struct {
	Source    string `mapstructure:"source" validate:"required"`
	Delimiter string `mapstructure:"delimiter" validate:"len=1"`
	Header    bool   `mapstructure:"header"`
	Table     string `mapstructure:"table" validate:"required"`
	Progress  bool   `mapstructure:"progress"`
}

type RecommendConfig struct {
	TopN int `mapstructure:"top_n" validate:"gte=0"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=table json"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Source:    "ratings.csv",
			Delimiter: ",",
			Header:    true,
			Table:     storage.DefaultTable,
		},
		Recommend: RecommendConfig{
			TopN: 10,
		},
		Output: OutputConfig{
			Format: FormatTable,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [data]
	v.SetDefault("data.source", defaultConfig.Data.Source)
	v.SetDefault("data.delimiter", defaultConfig.Data.Delimiter)
	v.SetDefault("data.header", defaultConfig.Data.Header)
	v.SetDefault("data.table", defaultConfig.Data.Table)
	v.SetDefault("data.progress", defaultConfig.Data.Progress)
	// [recommend]
	v.SetDefault("recommend.top_n", defaultConfig.Recommend.TopN)
	// [output]
	v.SetDefault("output.format", defaultConfig.Output.Format)
}

type configBinding struct {
	key string
	env string
}

// LoadConfig loads configuration from a TOML file. An empty path loads the
// default configuration. Environment variables take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)

	// bind environment bindings
	bindings := []configBinding{
		{"data.source", "USERCF_DATA_SOURCE"},
		{"data.delimiter", "USERCF_DATA_DELIMITER"},
		{"data.header", "USERCF_DATA_HEADER"},
		{"data.table", "USERCF_DATA_TABLE"},
		{"recommend.top_n", "USERCF_TOP_N"},
		{"output.format", "USERCF_OUTPUT_FORMAT"},
	}
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// load config file
	if path != "" {
		v.SetConfigType("toml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// unmarshal config file
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks field constraints.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}

// CSVOptions returns the options for reading a text file.
func (config *Config) CSVOptions() dataset.CSVOptions {
	return dataset.CSVOptions{
		Sep:      config.Data.Delimiter,
		Header:   config.Data.Header,
		Progress: config.Data.Progress,
	}
}

// StorageOptions returns the options for loading the rating matrix.
func (config *Config) StorageOptions() storage.Options {
	return storage.Options{
		CSV:   config.CSVOptions(),
		Table: config.Data.Table,
	}
}

// Map flattens the configuration into nested maps keyed by setting name.
func (config *Config) Map() (map[string]any, error) {
	var values map[string]any
	if err := mapstructure.Decode(config, &values); err != nil {
		return nil, errors.Trace(err)
	}
	return values, nil
}

/*
Copyright 2025 Bank Recon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"RECON_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"RECON_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"RECON_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"RECON_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"RECON_REDIS_DNS"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

// MatchingConfig bounds the combinatorial passes of the bank-finance matcher.
type MatchingConfig struct {
	MaxComboSize  int `json:"max_combo_size" envconfig:"RECON_MATCHING_MAX_COMBO_SIZE"`
	MaxComboTries int `json:"max_combo_tries" envconfig:"RECON_MATCHING_MAX_COMBO_TRIES"`
}

type Configuration struct {
	ProjectName  string                   `json:"project_name" envconfig:"RECON_PROJECT_NAME"`
	Server       ServerConfig             `json:"server"`
	DataSource   DataSourceConfig         `json:"data_source"`
	Redis        RedisConfig              `json:"redis"`
	Notification Notification             `json:"notification"`
	Matching     MatchingConfig           `json:"matching"`
	Dialects     map[string]DialectConfig `json:"dialects"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("recon", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called recon.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Bank Recon Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Matching.MaxComboSize <= 0 {
		cnf.Matching.MaxComboSize = DefaultMaxComboSize
	}
	if cnf.Matching.MaxComboTries <= 0 {
		cnf.Matching.MaxComboTries = DefaultMaxComboTries
	}

	// Built-in dialect tables apply wherever the file doesn't override them.
	if cnf.Dialects == nil {
		cnf.Dialects = map[string]DialectConfig{}
	}
	for code, dialect := range BuiltinDialects() {
		if _, ok := cnf.Dialects[code]; !ok {
			cnf.Dialects[code] = dialect
		}
	}

	return nil
}

// Dialect returns the matching configuration for a bank dialect. Unknown
// dialects get a zero config: identity aliasing, no cheque rules.
func (cnf *Configuration) Dialect(bankCode string) DialectConfig {
	return cnf.Dialects[bankCode]
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Matching.MaxComboSize <= 0 {
		mockConfig.Matching.MaxComboSize = DefaultMaxComboSize
	}
	if mockConfig.Matching.MaxComboTries <= 0 {
		mockConfig.Matching.MaxComboTries = DefaultMaxComboTries
	}
	if mockConfig.Dialects == nil {
		mockConfig.Dialects = BuiltinDialects()
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}

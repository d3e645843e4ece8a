// Package config loads and validates the beanclerk configuration file.
//
// The configuration is a YAML document naming the ledger file, the bank
// accounts to import and the rules used to categorize imported transactions:
//
//	input_file: ledger.beancount
//	accounts:
//	  - account: Assets:Bank:Fio
//	    importer: fio_banka
//	    token: ${FIO_TOKEN}
//	categorization_rules:
//	  - matches:
//	      metadata:
//	        counter_account: "^123456"
//	    account: Expenses:Rent
//
// Keys of an account entry other than account and importer are passed to the
// importer as options. Option values, input_file and history_file may refer
// to environment variables; a .env file next to the configuration file is
// consulted for variables missing from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robinvdvleuten/beanclerk/ast"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "beanclerk-config.yml"

// Config is a validated configuration.
type Config struct {
	InputFile   string          `yaml:"input_file"`
	HistoryFile string          `yaml:"history_file"`
	Accounts    []AccountConfig `yaml:"accounts"`
	Rules       []Rule          `yaml:"categorization_rules"`

	// ConfigFile is the absolute path the configuration was loaded from.
	ConfigFile string `yaml:"-"`
}

// AccountConfig names a ledger account and the importer that fetches its
// transactions.
type AccountConfig struct {
	Account  ast.Account `yaml:"account"`
	Importer string      `yaml:"importer"`
	Options  Options     `yaml:",inline"`
}

// Options are importer specific settings.
type Options map[string]string

// Get returns the option value, or "" when it is not set.
func (o Options) Get(key string) string {
	return o[key]
}

// GetDefault returns the option value, or def when it is not set or empty.
func (o Options) GetDefault(key, def string) string {
	if v := o[key]; v != "" {
		return v
	}
	return def
}

// Required returns the option value or an error when it is missing or empty.
func (o Options) Required(key string) (string, error) {
	if v := o[key]; v != "" {
		return v, nil
	}
	return "", fmt.Errorf("option %q is required", key)
}

// Error is returned when the configuration cannot be loaded.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot load config file: %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load reads, expands and validates the configuration at path.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	cfg, err := load(abs)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// LoadRules reloads the configuration at path and returns its rules only.
func LoadRules(path string) ([]Rule, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Rules, nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}
	cfg.ConfigFile = path

	env, err := readDotenv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}
	cfg.expand(env)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readDotenv reads variables from a .env file. A missing file is not an error.
func readDotenv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return env, nil
}

// Dir returns the directory holding the configuration file.
func (c *Config) Dir() string {
	return filepath.Dir(c.ConfigFile)
}

// expand resolves variables and ~ in paths and option values. Relative paths
// are resolved from the configuration directory.
func (c *Config) expand(env map[string]string) {
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return env[key]
	}

	c.InputFile = c.path(expandHome(os.Expand(c.InputFile, lookup)))
	if c.HistoryFile != "" {
		c.HistoryFile = c.path(expandHome(os.Expand(c.HistoryFile, lookup)))
	}

	for i := range c.Accounts {
		for key, value := range c.Accounts[i].Options {
			c.Accounts[i].Options[key] = os.Expand(value, lookup)
		}
	}
}

func (c *Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func (c *Config) validate() error {
	if c.InputFile == "" {
		return errors.New("input_file is required")
	}
	if _, err := os.Stat(c.InputFile); err != nil {
		return fmt.Errorf("input file '%s' does not exist", c.InputFile)
	}

	if len(c.Accounts) == 0 {
		return errors.New("no accounts configured")
	}

	seen := make(map[ast.Account]bool, len(c.Accounts))
	for i, acc := range c.Accounts {
		if err := acc.Account.Validate(); err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
		if acc.Importer == "" {
			return fmt.Errorf("accounts[%d]: importer is required for %s", i, acc.Account)
		}
		if seen[acc.Account] {
			return fmt.Errorf("accounts[%d]: account %s is configured more than once", i, acc.Account)
		}
		seen[acc.Account] = true
	}

	for i := range c.Rules {
		if err := c.Rules[i].Compile(); err != nil {
			return fmt.Errorf("categorization_rules[%d]: %w", i, err)
		}
	}

	return nil
}

// Account returns the configuration of account.
func (c *Config) Account(account ast.Account) (AccountConfig, bool) {
	for _, acc := range c.Accounts {
		if acc.Account == account {
			return acc, true
		}
	}
	return AccountConfig{}, false
}

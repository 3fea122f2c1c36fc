package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/passvault/config"
	ConfigFileName    = "passvault.yml"
)

// VaultConfig holds all vault configuration settings
type VaultConfig struct {
	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// APIListLimitMax is the maximum number of results for listing requests
	APIListLimitMax int `yaml:"api_list_limit_max" json:"api_list_limit_max"`

	// SessionTokenTTL is the TTL for session tokens in seconds
	SessionTokenTTL int `yaml:"session_token_ttl" json:"session_token_ttl"`

	// AccessWindowTTL is the lifetime of a granted restricted-access window
	// in seconds
	AccessWindowTTL int `yaml:"access_window_ttl" json:"access_window_ttl"`

	// AuditPersistEnabled writes audit events to the event_log table in
	// addition to the syslog stream
	AuditPersistEnabled bool `yaml:"audit_persist_enabled" json:"audit_persist_enabled"`

	// HistoryDefaultEnabled stores payload history for new items unless the
	// item says otherwise
	HistoryDefaultEnabled bool `yaml:"history_default_enabled" json:"history_default_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *VaultConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *VaultConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	// Load config
	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *VaultConfig {
	return &VaultConfig{
		TrustedProxies:        []string{},
		APIListLimitMax:       1000,
		SessionTokenTTL:       480,
		AccessWindowTTL:       3600,
		AuditPersistEnabled:   true,
		HistoryDefaultEnabled: true,
		sources:               make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*VaultConfig, error) {
	config := newDefault()

	// Initialize all sources as "default"
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	// Determine config file path
	configPath := os.Getenv("PASSVAULT_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	// Try to load from config file
	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig VaultConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	// Override with environment variables
	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"trusted_proxies", "api_list_limit_max", "session_token_ttl",
		"access_window_ttl", "audit_persist_enabled", "history_default_enabled",
	}
}

func (c *VaultConfig) applyFileConfig(file *VaultConfig) {
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.APIListLimitMax != 0 {
		c.APIListLimitMax = file.APIListLimitMax
		c.sources["api_list_limit_max"] = "file"
	}
	if file.SessionTokenTTL != 0 {
		c.SessionTokenTTL = file.SessionTokenTTL
		c.sources["session_token_ttl"] = "file"
	}
	if file.AccessWindowTTL != 0 {
		c.AccessWindowTTL = file.AccessWindowTTL
		c.sources["access_window_ttl"] = "file"
	}
}

func (c *VaultConfig) applyEnvConfig() {
	if val := os.Getenv("PASSVAULT_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("PASSVAULT_API_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.APIListLimitMax = i
			c.sources["api_list_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("PASSVAULT_SESSION_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SessionTokenTTL = i
			c.sources["session_token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("PASSVAULT_ACCESS_WINDOW_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.AccessWindowTTL = i
			c.sources["access_window_ttl"] = "environment"
		}
	}
	if val := os.Getenv("PASSVAULT_AUDIT_PERSIST_ENABLED"); val != "" {
		c.AuditPersistEnabled = val == "true" || val == "1"
		c.sources["audit_persist_enabled"] = "environment"
	}
	if val := os.Getenv("PASSVAULT_HISTORY_DEFAULT_ENABLED"); val != "" {
		c.HistoryDefaultEnabled = val == "true" || val == "1"
		c.sources["history_default_enabled"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *VaultConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *VaultConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// SessionTTL returns the session token TTL as a duration
func (c *VaultConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTokenTTL) * time.Second
}

// AccessWindow returns the granted access window lifetime as a duration
func (c *VaultConfig) AccessWindow() time.Duration {
	return time.Duration(c.AccessWindowTTL) * time.Second
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *VaultConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *VaultConfig) Validate() error {
	// Validate trusted proxies are valid CIDR ranges
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.AccessWindowTTL <= 0 {
		return fmt.Errorf("access_window_ttl must be positive, got %d", c.AccessWindowTTL)
	}
	if c.SessionTokenTTL <= 0 {
		return fmt.Errorf("session_token_ttl must be positive, got %d", c.SessionTokenTTL)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *VaultConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "api_list_limit_max", Value: strconv.Itoa(c.APIListLimitMax), Source: c.Source("api_list_limit_max")},
		{Name: "session_token_ttl", Value: strconv.Itoa(c.SessionTokenTTL), Source: c.Source("session_token_ttl")},
		{Name: "access_window_ttl", Value: strconv.Itoa(c.AccessWindowTTL), Source: c.Source("access_window_ttl")},
		{Name: "audit_persist_enabled", Value: strconv.FormatBool(c.AuditPersistEnabled), Source: c.Source("audit_persist_enabled")},
		{Name: "history_default_enabled", Value: strconv.FormatBool(c.HistoryDefaultEnabled), Source: c.Source("history_default_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *VaultConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *VaultConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	// GlobalConfig holds the global configuration instance
	GlobalConfig *Config
)

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath("/etc/storefront")
		v.AddConfigPath("$HOME/.storefront")
	}

	// Environment variables
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The downstream checkout services are configured through their
	// contractual environment variable names, unprefixed.
	bindCheckoutEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Printf("Config file not found, using defaults and environment variables\n")
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	GlobalConfig = config

	return config, nil
}

// bindCheckoutEnv binds the fixed env var names of the downstream collaborators
func bindCheckoutEnv(v *viper.Viper) {
	v.BindEnv("checkout.delivery_order_processor_uri", "DeliveryOrderProcessorUri")
	v.BindEnv("checkout.order_items_reserver_uri", "OrderItemsReserverUri")
	v.BindEnv("checkout.service_bus_connection_string", "ServiceBusConnectionString")
	v.BindEnv("checkout.service_bus_queue_name", "ServiceBusQueueName")
}

// MustLoadConfig loads configuration and panics on error
func MustLoadConfig(configPath string) *Config {
	config, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return config
}

// GetConfig returns the global configuration instance
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("Config not loaded. Call LoadConfig first.")
	}
	return GlobalConfig
}

// ReloadConfig reloads the configuration
func ReloadConfig() error {
	if GlobalConfig == nil {
		return fmt.Errorf("config not initialized")
	}

	configPath := viper.ConfigFileUsed()
	newConfig, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	GlobalConfig = newConfig
	return nil
}

// WatchConfig watches for configuration file changes
func WatchConfig(callback func()) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		fmt.Printf("Config file changed: %s\n", e.Name)
		if err := ReloadConfig(); err != nil {
			fmt.Printf("Failed to reload config: %v\n", err)
			return
		}
		if callback != nil {
			callback()
		}
	})
}

// GetEnv returns environment variable value with fallback
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// IsProduction returns true if running in production mode
func IsProduction() bool {
	env := GetEnv("STOREFRONT_ENV", "dev")
	return env == "prod" || env == "production"
}

// IsTest returns true if running in test mode
func IsTest() bool {
	env := GetEnv("STOREFRONT_ENV", "dev")
	return env == "test"
}

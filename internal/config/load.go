package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from a .env file using the provided base name.
// This is the preferred method for loading environment-specific configurations.
func LoadConfig(configName string) (*Config, error) {
	configFileName := fmt.Sprintf("%s.env", configName)
	return loadConfig(configFileName, "env")
}

// LoadConfigWithName loads configuration using the specified name, auto-detecting
// the file type. Useful when the configuration file extension is variable.
func LoadConfigWithName(configName string) (*Config, error) {
	return loadConfig(configName, "")
}

// loadConfig handles configuration loading from files and environment variables.
// It implements a layered approach to configuration:
// 1. Load defaults
// 2. Override with config file values (if found)
// 3. Override with environment variables
// 4. Validate the final configuration
func loadConfig(configName, configType string) (*Config, error) {
	// Initialize viper with default values
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	if configType != "" {
		v.SetConfigType(configType)
	}

	// Add config paths in order of priority
	v.AddConfigPath("./configs") // First check in configs directory
	v.AddConfigPath(".")         // Then check in root directory

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Printf("INFO: No config file '%s' found, relying on environment variables and defaults.\n", configName)
		} else {
			fmt.Printf("WARNING: Error reading config file (%s): %v\n", v.ConfigFileUsed(), err)
		}
	} else {
		fmt.Printf("INFO: Config loaded from file: %s\n", v.ConfigFileUsed())
	}

	v.AutomaticEnv() // Automatically read matching environment variables

	// Build the config struct
	config := &Config{
		Application: ApplicationConfig{
			Name:       v.GetString("APP_NAME"),
			Production: v.GetBool("PRODUCTION"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			RunHistory:      v.GetInt("SERVER_RUN_HISTORY"),
		},
		Banking: BankingConfig{
			BaseURL:         v.GetString("BANKING_BASE_URL"),
			PaymentAccount:  v.GetString("BANKING_PAYMENT_ACCOUNT"),
			TransferToken:   v.GetString("BANKING_TRANSFER_TOKEN"),
			XSRFToken:       v.GetString("BANKING_XSRF_TOKEN"),
			SessionToken:    v.GetString("BANKING_SESSION_TOKEN"),
			Timeout:         v.GetDuration("BANKING_TIMEOUT"),
			SourceUTCOffset: v.GetDuration("BANKING_SOURCE_UTC_OFFSET"),
		},
		Spreadsheet: SpreadsheetConfig{
			CredentialsFile: v.GetString("SPREADSHEET_CREDENTIALS_FILE"),
			ID:              v.GetString("SPREADSHEET_ID"),
			FinanceSheet:    v.GetString("SPREADSHEET_FINANCE"),
			PaycheckSheet:   v.GetString("SPREADSHEET_PAYCHECKS"),
			SpendingSheet:   v.GetString("SPREADSHEET_SPENDINGS"),
		},
		Postgres: PostgresConfig{
			URL:             v.GetString("POSTGRES_URL"),
			MaxConns:        int32(v.GetInt("POSTGRES_MAX_CONNS")),
			MinConns:        int32(v.GetInt("POSTGRES_MIN_CONNS")),
			ConnMaxLifetime: v.GetDuration("POSTGRES_MAX_CONN_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("POSTGRES_MAX_CONN_IDLE_TIME"),
			MigrationsPath:  v.GetString("POSTGRES_MIGRATIONS_PATH"),
		},
		Schedule: ScheduleConfig{
			Repayment: v.GetString("SCHEDULE_REPAYMENT"),
			Payroll:   v.GetString("SCHEDULE_PAYROLL"),
		},
		Payroll: PayrollConfig{
			Pace: v.GetDuration("PAYROLL_PACE"),
		},
		WorkerPool: WorkerPoolConfig{
			Size: v.GetInt("WORKER_POOL_SIZE"),
		},
	}

	// Validate the configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults initializes configuration with sensible default values.
// Secrets (cookie values, transfer token, spreadsheet id) deliberately have no
// defaults; validation rejects a configuration that does not provide them.
func setDefaults(v *viper.Viper) {
	// Status HTTP server defaults
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 120*time.Second)
	v.SetDefault("SERVER_RUN_HISTORY", 50)

	// Banking endpoint defaults. The source system's clock runs two hours
	// ahead of UTC, which feeds the settlement window computation.
	v.SetDefault("BANKING_TIMEOUT", 30*time.Second)
	v.SetDefault("BANKING_SOURCE_UTC_OFFSET", 2*time.Hour)

	// PostgreSQL defaults for the audit sink - balanced settings for a bot
	// that writes a handful of rows per scheduled run
	v.SetDefault("POSTGRES_MAX_CONNS", 5)
	v.SetDefault("POSTGRES_MIN_CONNS", 1)
	v.SetDefault("POSTGRES_MAX_CONN_LIFETIME", time.Hour)
	v.SetDefault("POSTGRES_MAX_CONN_IDLE_TIME", 30*time.Minute)
	v.SetDefault("POSTGRES_MIGRATIONS_PATH", "migrations/postgres")

	// Schedule defaults: repayment reconciliation nightly at 03:00, payroll
	// on Sunday evening
	v.SetDefault("SCHEDULE_REPAYMENT", "0 3 * * *")
	v.SetDefault("SCHEDULE_PAYROLL", "0 18 * * 0")

	// Payroll sequencer pacing between consecutive transfers
	v.SetDefault("PAYROLL_PACE", 250*time.Millisecond)

	// Logging defaults - 'info' provides good balance of information vs noise
	v.SetDefault("LOG_LEVEL", "info")

	// Application defaults - development-friendly baseline configuration
	v.SetDefault("APP_NAME", "settlement-bot")
	v.SetDefault("PRODUCTION", false)

	// Worker pool default for spreadsheet update application
	v.SetDefault("WORKER_POOL_SIZE", 4)
}

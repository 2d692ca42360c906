// Package config provides configuration structures and validation for the bot.
// It handles environment-based configuration for all major components: the
// banking endpoint, the spreadsheet store, the audit log sink, task schedules
// and the status server.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all
// components. It is read once at startup and never mutated afterwards; every
// collaborator receives the values it needs through its constructor.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Banking     BankingConfig
	Spreadsheet SpreadsheetConfig
	Postgres    PostgresConfig
	Schedule    ScheduleConfig
	Payroll     PayrollConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Name       string
	Production bool // false runs every task in dry-run mode and disables the audit sink
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains status HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
	RunHistory      int           // Number of recent task runs kept for /api/v1/runs
}

// BankingConfig contains settings for the third-party banking endpoint
type BankingConfig struct {
	BaseURL         string        // Endpoint base URL, without trailing slash
	PaymentAccount  string        // Account monitored for repayments and used for disbursements
	TransferToken   string        // Token required to initiate outbound transfers
	XSRFToken       string        // XSRF session cookie value
	SessionToken    string        // Application session cookie value
	Timeout         time.Duration // Per-request HTTP timeout
	SourceUTCOffset time.Duration // Fixed offset of the endpoint's clock relative to UTC
}

// SpreadsheetConfig contains settings for the spreadsheet-backed ledger store
type SpreadsheetConfig struct {
	CredentialsFile string // Service account credentials JSON
	ID              string // Spreadsheet document id
	FinanceSheet    string // Sheet holding open loans
	PaycheckSheet   string // Sheet holding computed paychecks
	SpendingSheet   string // Sheet receiving spending entries
}

// PostgresConfig contains PostgreSQL configuration for the audit log sink
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// ScheduleConfig contains the cron cadence of each task
type ScheduleConfig struct {
	Repayment string // Daily loan repayment reconciliation
	Payroll   string // Weekly paycheck disbursement
}

// PayrollConfig contains disbursement sequencer configuration
type PayrollConfig struct {
	Pace time.Duration // Delay inserted between consecutive transfers
}

// WorkerPoolConfig contains worker pool configuration for the update applier
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints. A missing
// required value here is the only error the process treats as fatal at startup.
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}
	if c.Server.RunHistory <= 0 {
		validationErrors = append(validationErrors, "SERVER_RUN_HISTORY must be greater than 0")
	}

	// Validate Banking config
	if c.Banking.BaseURL == "" {
		validationErrors = append(validationErrors, "BANKING_BASE_URL is required")
	}
	if c.Banking.PaymentAccount == "" {
		validationErrors = append(validationErrors, "BANKING_PAYMENT_ACCOUNT is required")
	}
	if c.Banking.TransferToken == "" {
		validationErrors = append(validationErrors, "BANKING_TRANSFER_TOKEN is required")
	}
	if c.Banking.XSRFToken == "" {
		validationErrors = append(validationErrors, "BANKING_XSRF_TOKEN is required")
	}
	if c.Banking.SessionToken == "" {
		validationErrors = append(validationErrors, "BANKING_SESSION_TOKEN is required")
	}
	if c.Banking.Timeout <= 0 {
		validationErrors = append(validationErrors, "BANKING_TIMEOUT must be greater than 0")
	}

	// Validate Spreadsheet config
	if c.Spreadsheet.CredentialsFile == "" {
		validationErrors = append(validationErrors, "SPREADSHEET_CREDENTIALS_FILE is required")
	}
	if c.Spreadsheet.ID == "" {
		validationErrors = append(validationErrors, "SPREADSHEET_ID is required")
	}
	if c.Spreadsheet.FinanceSheet == "" {
		validationErrors = append(validationErrors, "SPREADSHEET_FINANCE is required")
	}
	if c.Spreadsheet.PaycheckSheet == "" {
		validationErrors = append(validationErrors, "SPREADSHEET_PAYCHECKS is required")
	}
	if c.Spreadsheet.SpendingSheet == "" {
		validationErrors = append(validationErrors, "SPREADSHEET_SPENDINGS is required")
	}

	// The audit sink only runs in production, so the DSN is only required there
	if c.Application.Production {
		if c.Postgres.URL == "" {
			validationErrors = append(validationErrors, "POSTGRES_URL is required in production")
		}
		if c.Postgres.MaxConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
		}
		if c.Postgres.MinConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
		}
		if c.Postgres.ConnMaxLifetime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
		}
		if c.Postgres.ConnMaxIdleTime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
		}
	}

	// Validate Schedule config
	if c.Schedule.Repayment == "" {
		validationErrors = append(validationErrors, "SCHEDULE_REPAYMENT is required")
	}
	if c.Schedule.Payroll == "" {
		validationErrors = append(validationErrors, "SCHEDULE_PAYROLL is required")
	}

	// Validate Payroll config
	if c.Payroll.Pace <= 0 {
		validationErrors = append(validationErrors, "PAYROLL_PACE must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// HTTP Server
	Port string

	// Google Sheets
	SpreadsheetID       string
	CredentialsFile     string
	CredentialsJSON     string
	ClientsRange        string
	InvoicesRange       string
	InvoiceNumbersRange string
	ExpensesRange       string
	ContactsRange       string
	TrackedRange        string

	// Google Drive
	InvoiceFolderID  string
	DocumentFolderID string

	// Invoice sender identity
	SenderName    string
	SenderStreet  string
	SenderCity    string
	SenderUstID   string
	SenderBank    string
	SenderIBAN    string
	SenderEmail   string
	SenderWebsite string
	SenderPhone   string

	// Tax
	TaxRate          decimal.Decimal
	Kleinunternehmer bool

	// Auth
	AuthSecret        string
	DashboardPassword string

	// Upstream calls
	UpstreamTimeout time.Duration

	// Backend selection
	DataBackend string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		SpreadsheetID:       getEnv("GOOGLE_SPREADSHEET_ID", ""),
		CredentialsFile:     getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		CredentialsJSON:     getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		ClientsRange:        getEnv("SHEET_CLIENTS_RANGE", "Kunden!A:D"),
		InvoicesRange:       getEnv("SHEET_INVOICES_RANGE", "Einnahmen_Gewerbe!A:G"),
		InvoiceNumbersRange: getEnv("SHEET_INVOICE_NUMBERS_RANGE", "Einnahmen_Gewerbe!F:F"),
		ExpensesRange:       getEnv("SHEET_EXPENSES_RANGE", "Ausgaben_Gewerbe!A:G"),
		ContactsRange:       getEnv("SHEET_CONTACTS_RANGE", "Clients!A:H"),
		TrackedRange:        getEnv("SHEET_TRACKED_INVOICES_RANGE", "Invoices!A:N"),

		InvoiceFolderID:  getEnv("DRIVE_INVOICE_FOLDER_ID", ""),
		DocumentFolderID: getEnv("DRIVE_DOCUMENT_FOLDER_ID", ""),

		SenderName:    getEnv("INVOICE_SENDER_NAME", ""),
		SenderStreet:  getEnv("INVOICE_SENDER_STREET", ""),
		SenderCity:    getEnv("INVOICE_SENDER_CITY", ""),
		SenderUstID:   getEnv("INVOICE_SENDER_UST_ID", ""),
		SenderBank:    getEnv("INVOICE_SENDER_BANK", ""),
		SenderIBAN:    getEnv("INVOICE_SENDER_IBAN", ""),
		SenderEmail:   getEnv("INVOICE_SENDER_EMAIL", ""),
		SenderWebsite: getEnv("INVOICE_SENDER_WEBSITE", ""),
		SenderPhone:   getEnv("INVOICE_SENDER_PHONE", ""),

		TaxRate:          getEnvDecimal("INVOICE_TAX_RATE", decimal.Zero),
		Kleinunternehmer: getEnv("INVOICE_KLEINUNTERNEHMER", "") == "true",

		AuthSecret:        getEnv("AUTH_SECRET", ""),
		DashboardPassword: getEnv("DASHBOARD_PASSWORD", ""),

		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "sheets":
		if c.SpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.CredentialsFile == "" && c.CredentialsJSON == "" {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets backend")
		}
		if c.CredentialsFile != "" {
			if _, err := os.Stat(c.CredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.CredentialsFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [memory sheets]", c.DataBackend))
	}

	if len(c.AuthSecret) < 32 {
		errors = append(errors, "AUTH_SECRET must be at least 32 characters")
	}
	if c.DashboardPassword == "" {
		errors = append(errors, "DASHBOARD_PASSWORD cannot be empty")
	}

	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		errors = append(errors, fmt.Sprintf("invalid tax rate %s: must be between 0 and 100", c.TaxRate))
	}

	if c.UpstreamTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid upstream timeout %v: must be at least 1 second", c.UpstreamTimeout))
	} else if c.UpstreamTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid upstream timeout %v: must be at most 5 minutes", c.UpstreamTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Credentials returns the service account JSON, reading the file variant
// when no inline JSON is set.
func (c *Config) Credentials() ([]byte, error) {
	if c.CredentialsJSON != "" {
		return []byte(c.CredentialsJSON), nil
	}
	if c.CredentialsFile != "" {
		data, err := os.ReadFile(c.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("no Google credentials configured")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

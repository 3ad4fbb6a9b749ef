// Package config loads the print server configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/thereceipt/order-printing/internal/encoder"
	"github.com/thereceipt/order-printing/internal/logger"
	"github.com/thereceipt/order-printing/pkg/directive"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Log       logger.Config
	PrintNode PrintNodeConfig
	Printer   PrinterConfig
	Receipt   ReceiptConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	// OrdersDir is the only directory order_path may read from; empty disables order_path
	OrdersDir      string
	AllowOrderURLs bool
	FetchTimeout   time.Duration
}

// PrintNodeConfig holds the remote print-job API settings
type PrintNodeConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// PrinterConfig holds local printer and encoder settings
type PrinterConfig struct {
	RegistryPath  string
	MaxRetries    int
	LocalTimeout  time.Duration
	DefaultFamily string
	LineWidth     int
}

// ReceiptConfig holds the fixed literals printed on every receipt
type ReceiptConfig struct {
	SourceTag  string
	BrandLines []string
	QR         QRConfig
}

// QRConfig describes the footer QR code
type QRConfig struct {
	Payload    string
	CellSize   int
	Correction string
	Model      int
}

// Load reads configuration from command-line flags, config.yaml and RECEIPT_*
// environment variables. flags may be nil.
// Priority (highest to lowest):
// 1. Flags (--port)
// 2. Environment variables (e.g. RECEIPT_PRINTNODE_API_KEY)
// 3. config.yaml
// 4. Built-in defaults
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/order-printing")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v, flags)
}

// RegisterFlags adds the server flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("port", "", "HTTP port (overrides server.port)")
}

func fromViper(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	portFlag := false
	if flags != nil {
		if f := flags.Lookup("port"); f != nil {
			if err := v.BindPFlag("server.port", f); err != nil {
				return nil, fmt.Errorf("failed to bind port flag: %w", err)
			}
			portFlag = f.Changed
		}
	}

	v.SetEnvPrefix("RECEIPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			OrdersDir:      v.GetString("server.orders_dir"),
			AllowOrderURLs: v.GetBool("server.allow_order_urls"),
			FetchTimeout:   v.GetDuration("server.fetch_timeout"),
		},
		Log: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		PrintNode: PrintNodeConfig{
			Endpoint: v.GetString("printnode.endpoint"),
			APIKey:   v.GetString("printnode.api_key"),
			Timeout:  v.GetDuration("printnode.timeout"),
		},
		Printer: PrinterConfig{
			RegistryPath:  v.GetString("printer.registry_path"),
			MaxRetries:    v.GetInt("printer.max_retries"),
			LocalTimeout:  v.GetDuration("printer.local_timeout"),
			DefaultFamily: v.GetString("printer.default_family"),
			LineWidth:     v.GetInt("printer.line_width"),
		},
		Receipt: ReceiptConfig{
			SourceTag:  v.GetString("receipt.source_tag"),
			BrandLines: v.GetStringSlice("receipt.brand_lines"),
			QR: QRConfig{
				Payload:    v.GetString("receipt.qr.payload"),
				CellSize:   v.GetInt("receipt.qr.cell_size"),
				Correction: v.GetString("receipt.qr.correction"),
				Model:      v.GetInt("receipt.qr.model"),
			},
		},
	}

	// Older deployments export SERVER_PORT
	if port := os.Getenv("SERVER_PORT"); port != "" && !portFlag && os.Getenv("RECEIPT_SERVER_PORT") == "" {
		cfg.Server.Port = port
	}

	if cfg.Printer.RegistryPath == "" {
		cfg.Printer.RegistryPath = defaultRegistryPath()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "12212")
	v.SetDefault("server.orders_dir", "")
	v.SetDefault("server.allow_order_urls", true)
	v.SetDefault("server.fetch_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("printnode.endpoint", "https://api.printnode.com/printjobs")
	v.SetDefault("printnode.api_key", "")
	v.SetDefault("printnode.timeout", 15*time.Second)
	v.SetDefault("printer.registry_path", "")
	v.SetDefault("printer.max_retries", 1)
	v.SetDefault("printer.local_timeout", 30*time.Second)
	v.SetDefault("printer.default_family", "epson")
	v.SetDefault("printer.line_width", 48)
	v.SetDefault("receipt.source_tag", "L4MARKET")
	v.SetDefault("receipt.brand_lines", []string{"L4MARKET", "www.l4market.com", "Powered by L4Market"})
	v.SetDefault("receipt.qr.payload", "https://l4market.com/")
	v.SetDefault("receipt.qr.cell_size", 6)
	v.SetDefault("receipt.qr.correction", "M")
	v.SetDefault("receipt.qr.model", 2)
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.PrintNode.Timeout <= 0 {
		return fmt.Errorf("printnode.timeout must be positive")
	}
	if c.Printer.LocalTimeout <= 0 {
		return fmt.Errorf("printer.local_timeout must be positive")
	}
	if c.Printer.MaxRetries < 1 {
		return fmt.Errorf("printer.max_retries must be at least 1")
	}
	if c.Printer.LineWidth < 16 {
		return fmt.Errorf("printer.line_width must be at least 16")
	}
	if c.Server.FetchTimeout <= 0 {
		return fmt.Errorf("server.fetch_timeout must be positive")
	}
	if _, err := encoder.ParseFamily(c.Printer.DefaultFamily); err != nil {
		return fmt.Errorf("printer.default_family: %w", err)
	}
	qr := directive.QR(c.Receipt.QR.Directive())
	if err := directive.ValidateOne(&qr); err != nil {
		return fmt.Errorf("receipt.qr: %w", err)
	}
	return nil
}

// Directive returns the footer QR as a directive payload
func (q QRConfig) Directive() directive.QRCode {
	return directive.QRCode{
		Payload:    q.Payload,
		CellSize:   q.CellSize,
		Correction: directive.Correction(q.Correction),
		Model:      q.Model,
	}
}

// defaultRegistryPath returns the path to the printer registry file.
// It tries to place it next to the executable, or falls back to current directory.
func defaultRegistryPath() string {
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		testFile := filepath.Join(exeDir, ".order-printing-write-test")
		if f, err := os.Create(testFile); err == nil {
			f.Close()
			os.Remove(testFile)
			return filepath.Join(exeDir, "printer_registry.json")
		}
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "printer_registry.json")
	}

	var configDir string
	if runtime.GOOS == "windows" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "order-printing")
	} else if home := os.Getenv("HOME"); home != "" {
		configDir = filepath.Join(home, ".config", "order-printing")
	}

	if configDir != "" {
		os.MkdirAll(configDir, 0755)
		return filepath.Join(configDir, "printer_registry.json")
	}

	return "printer_registry.json"
}

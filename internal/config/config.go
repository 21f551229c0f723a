// Package config provides configuration loading for the PDF parser.
// Supports YAML files, .env files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PDF_PARSER_"

// OCR engine names.
const (
	EngineOCRmyPDF  = "ocrmypdf"
	EngineTesseract = "tesseract"
)

// Config holds all configuration for the PDF parser.
type Config struct {
	OCR       OCRConfig       `yaml:"ocr"`
	Images    ImagesConfig    `yaml:"images"`
	Tables    TablesConfig    `yaml:"tables"`
	Partition PartitionConfig `yaml:"partition"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

// OCRConfig holds OCR pass settings.
type OCRConfig struct {
	Engine       string   `yaml:"engine"` // ocrmypdf or tesseract
	Languages    []string `yaml:"languages"`
	SkipText     bool     `yaml:"skip_text"`
	OCRmyPDFPath string   `yaml:"ocrmypdf_path"`
	DPI          float64  `yaml:"dpi"`
}

// LanguageSpec joins the languages the way tesseract expects them ("chi_sim+eng").
func (c OCRConfig) LanguageSpec() string {
	return strings.Join(c.Languages, "+")
}

// ImagesConfig holds image post-processing settings.
type ImagesConfig struct {
	Quality       int  `yaml:"quality"`
	StripMetadata bool `yaml:"strip_metadata"`
}

// TablesConfig holds table detection and workbook settings.
type TablesConfig struct {
	SheetPrefix string  `yaml:"sheet_prefix"`
	MinRows     int     `yaml:"min_rows"`
	MinColumns  int     `yaml:"min_columns"`
	ColumnGap   float64 `yaml:"column_gap"` // points between cells on one row
}

// PartitionConfig holds layout partition settings.
type PartitionConfig struct {
	TitleRatio float64 `yaml:"title_ratio"` // font size / body size to call a line a title
	MarginBand float64 `yaml:"margin_band"` // fraction of page height treated as header/footer
}

// OutputConfig holds front-end output settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Load reads configuration from an optional YAML file, .env, and environment overrides.
func Load(path string) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the configuration the tool ships with.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Engine:       EngineOCRmyPDF,
			Languages:    []string{"chi_sim", "eng"},
			SkipText:     true,
			OCRmyPDFPath: "ocrmypdf",
			DPI:          300,
		},
		Images: ImagesConfig{
			Quality:       85,
			StripMetadata: true,
		},
		Tables: TablesConfig{
			SheetPrefix: "Table_",
			MinRows:     2,
			MinColumns:  2,
			ColumnGap:   8,
		},
		Partition: PartitionConfig{
			TitleRatio: 1.25,
			MarginBand: 0.06,
		},
		Output: OutputConfig{
			Dir: "pdf_output",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.OCR.Engine != EngineOCRmyPDF && c.OCR.Engine != EngineTesseract {
		return fmt.Errorf("invalid ocr engine: %s", c.OCR.Engine)
	}

	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("ocr languages cannot be empty")
	}

	if c.OCR.DPI < 72 || c.OCR.DPI > 1200 {
		return fmt.Errorf("ocr dpi must be between 72 and 1200, got %v", c.OCR.DPI)
	}

	if c.Images.Quality < 1 || c.Images.Quality > 100 {
		return fmt.Errorf("image quality must be between 1 and 100, got %d", c.Images.Quality)
	}

	if c.Tables.MinRows < 1 || c.Tables.MinColumns < 2 {
		return fmt.Errorf("tables need min_rows >= 1 and min_columns >= 2")
	}

	if c.Tables.SheetPrefix == "" {
		return fmt.Errorf("tables sheet_prefix cannot be empty")
	}

	if c.Partition.TitleRatio <= 1 {
		return fmt.Errorf("partition title_ratio must be greater than 1")
	}

	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// applyEnvOverrides applies PDF_PARSER_* environment variables to config.
func applyEnvOverrides(cfg *Config) {
	if v := getenv("OCR_ENGINE"); v != "" {
		cfg.OCR.Engine = strings.ToLower(v)
	}

	if v := getenv("OCR_LANGUAGES"); v != "" {
		cfg.OCR.Languages = strings.FieldsFunc(v, func(r rune) bool { return r == '+' || r == ',' })
	}

	if v := getenv("OCRMYPDF_PATH"); v != "" {
		cfg.OCR.OCRmyPDFPath = v
	}

	if v := getenv("OCR_DPI"); v != "" {
		if dpi, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.OCR.DPI = dpi
		}
	}

	if v := getenv("IMAGE_QUALITY"); v != "" {
		if q, err := strconv.Atoi(v); err == nil {
			cfg.Images.Quality = q
		}
	}

	if v := getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

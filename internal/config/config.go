package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "consensuscli/internal/errors"
)

// Settings holds everything one export run needs. It is built once by Load
// and handed to each component; nothing downstream reads the environment.
type Settings struct {
	BaseURL    string `yaml:"base_url" envconfig:"API_BASE_URL" validate:"required,url"`
	APIKey     string `yaml:"api_key" envconfig:"API_KEY" validate:"required"`
	APISecret  string `yaml:"api_secret" envconfig:"API_SECRET" validate:"required"`
	Email      string `yaml:"email" envconfig:"API_EMAIL" validate:"required,email"`
	SourceName string `yaml:"source_name" envconfig:"SOURCE_NAME" validate:"required"`

	StartDate string `yaml:"start_date" envconfig:"START_DATE" validate:"required,isodate"`
	EndDate   string `yaml:"end_date" envconfig:"END_DATE" validate:"required,isodate"`

	PageLimit         int           `yaml:"page_limit" envconfig:"PAGE_LIMIT" validate:"gte=1,lte=10000"`
	PageNumber        int           `yaml:"page_number" envconfig:"PAGE_NUMBER" validate:"gte=1"`
	MaxPages          int           `yaml:"max_pages" envconfig:"MAX_PAGES" validate:"gte=1"`
	StopPolicy        string        `yaml:"stop_policy" envconfig:"PAGINATION_STOP" validate:"oneof=auto size flag"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gte=0"`
	RequestTimeout    time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	VerifySSL         bool          `yaml:"verify_ssl" envconfig:"VERIFY_SSL"`

	OutputDir      string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	FullPrefix     string `yaml:"full_prefix" envconfig:"FULL_PREFIX" validate:"required,excludesall=/\\"`
	SummaryPrefix  string `yaml:"summary_prefix" envconfig:"SUMMARY_PREFIX" validate:"required,excludesall=/\\,nefield=FullPrefix"`
	ListSeparator  string `yaml:"list_separator" envconfig:"LIST_SEPARATOR" validate:"required"`
	BOMPrefix      bool   `yaml:"csv_bom" envconfig:"CSV_BOM"`
	WorkbookExport bool   `yaml:"xlsx_export" envconfig:"XLSX_EXPORT"`

	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`

	Logging LoggingConfig `yaml:"logging" envconfig:"LOG"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE"`
}

// now is swapped in tests to pin "today"
var now = time.Now

// Load builds Settings from defaults, an optional YAML file and the process
// environment, in increasing order of precedence.
func Load() (*Settings, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("file", configFile)
		}
	}

	// No default tags: envconfig only overwrites fields whose variable is set.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML settings onto cfg
func loadFromFile(filePath string, cfg *Settings) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the settings file to read, or "" for none
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// normalize trims values and fills the date-dependent default
func (s *Settings) normalize() {
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.APISecret = strings.TrimSpace(s.APISecret)
	s.Email = strings.TrimSpace(s.Email)
	s.StartDate = strings.TrimSpace(s.StartDate)
	s.EndDate = strings.TrimSpace(s.EndDate)
	s.StopPolicy = strings.ToLower(strings.TrimSpace(s.StopPolicy))
	s.TraceExporter = strings.ToLower(strings.TrimSpace(s.TraceExporter))
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
	s.Logging.Output = strings.ToLower(strings.TrimSpace(s.Logging.Output))

	if s.EndDate == "" {
		s.EndDate = now().Format(DateLayout)
	}
	if s.Logging.FilePath == "" {
		s.Logging.FilePath = DefaultLogFilePath
	}
}

// Validate checks every field and returns a CONFIG error naming the first
// offending environment variable.
func (s *Settings) Validate() error {
	v := newValidator()

	if err := v.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.NewConfigError(describeFieldError(fe), err).
				WithContext("setting", fe.Field())
		}
		return apperrors.NewConfigError("config validation failed", err)
	}

	start, end, err := s.DateRange()
	if err != nil {
		return err
	}
	if start.After(end) {
		return apperrors.NewConfigError(
			fmt.Sprintf("START_DATE %s is after END_DATE %s", s.StartDate, s.EndDate), nil)
	}

	return nil
}

// newValidator reports fields by their environment variable name
func newValidator() *validator.Validate {
	v := validator.New()

	mustRegister(v, "isodate", isISODate)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("envconfig"); name != "" {
			return name
		}
		return fld.Name
	})

	return v
}

// mustRegister panics on a bad tag or nil func, which is a programming error
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// isISODate accepts calendar dates in YYYY-MM-DD form
func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func describeFieldError(fe validator.FieldError) string {
	name := envName(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", name, settingsEnvTag(fe.Param()))
	case "gte", "gt", "lte":
		return fmt.Sprintf("%s must be %s %s", name, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}

// envName turns a validator namespace like "Settings.LOG.LEVEL" into the
// variable an operator sets, "LOG_LEVEL".
func envName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, "_")
}

// settingsEnvTag maps a Settings field name to its environment variable
func settingsEnvTag(field string) string {
	if f, ok := reflect.TypeOf(Settings{}).FieldByName(field); ok {
		if tag := f.Tag.Get("envconfig"); tag != "" {
			return tag
		}
	}
	return field
}

// DateRange returns the parsed start and end dates
func (s *Settings) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, s.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewConfigError("invalid START_DATE", err)
	}
	end, err := time.Parse(DateLayout, s.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewConfigError("invalid END_DATE", err)
	}
	return start, end, nil
}

// OutputPath joins a file name onto the output directory
func (s *Settings) OutputPath(filename string) string {
	return filepath.Join(s.OutputDir, filename)
}

// LogValue keeps credentials out of structured logs
func (s *Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", s.BaseURL),
		slog.String("email", s.Email),
		slog.String("source_name", s.SourceName),
		slog.String("api_key", mask(s.APIKey)),
		slog.String("start_date", s.StartDate),
		slog.String("end_date", s.EndDate),
		slog.Int("page_limit", s.PageLimit),
		slog.Int("page_number", s.PageNumber),
		slog.Int("max_pages", s.MaxPages),
		slog.String("stop_policy", s.StopPolicy),
		slog.String("output_dir", s.OutputDir),
	)
}

// mask keeps the first four characters of a secret
func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-4)
}

// Default returns default settings. Required credentials are left empty.
func Default() *Settings {
	return &Settings{
		SourceName:     DefaultSourceName,
		StartDate:      DefaultStartDate,
		PageLimit:      DefaultPageLimit,
		PageNumber:     DefaultPageNumber,
		MaxPages:       DefaultMaxPages,
		StopPolicy:     StopPolicyAuto,
		RequestTimeout: DefaultRequestTimeout,
		VerifySSL:      true,
		OutputDir:      DefaultOutputDir,
		FullPrefix:     DefaultFullPrefix,
		SummaryPrefix:  DefaultSummaryPrefix,
		ListSeparator:  DefaultListSeparator,
		TraceExporter:  DefaultTraceExporter,
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFilePath,
		},
	}
}

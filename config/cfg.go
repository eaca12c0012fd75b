package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	validator "github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"

	"mdc/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	FontsConfig struct {
		Latin string `yaml:"latin" validate:"required"`
		Asian string `yaml:"asian" validate:"required"`
		Code  string `yaml:"code" validate:"required"`
	}

	TableConfig struct {
		HeaderColor string `yaml:"header_color" validate:"required,hexadecimal,len=6"`
		ZebraColor  string `yaml:"zebra_color" validate:"required,hexadecimal,len=6"`
	}

	CaptionsConfig struct {
		Enable bool   `yaml:"enable"`
		Style  string `yaml:"style"`
		Prefix string `yaml:"prefix"`
	}

	DiagramConfig struct {
		PNGScale       float64        `yaml:"png_scale" validate:"gte=1.0"`
		DisplayScale   float64        `yaml:"display_scale" validate:"gt=0.0,lte=1.0"`
		OptimizeLayout bool           `yaml:"optimize_layout"`
		Background     string         `yaml:"background"`
		Captions       CaptionsConfig `yaml:"captions"`
	}

	MathConfig struct {
		Enable       bool `yaml:"enable"`
		InlineDollar bool `yaml:"inline_dollar"`
	}

	ImagesConfig struct {
		MaxEmbedMB int      `yaml:"max_embed_mb" validate:"min=1"`
		DataDirs   []string `yaml:"data_dirs" validate:"dive,required"`
	}

	TitleConfig struct {
		Source  common.TitleSource `yaml:"source"`
		AIModel string             `yaml:"ai_model"`
	}

	DocumentConfig struct {
		FixZip                bool          `yaml:"fix_zip"`
		OutputNameTemplate    string        `yaml:"output_name_template"`
		FileNameTransliterate bool          `yaml:"file_name_transliterate"`
		UILanguage            string        `yaml:"ui_language" validate:"required"`
		Title                 TitleConfig   `yaml:"title"`
		Fonts                 FontsConfig   `yaml:"fonts"`
		Table                 TableConfig   `yaml:"table"`
		Math                  MathConfig    `yaml:"math"`
		Images                ImagesConfig  `yaml:"images"`
		Diagram               DiagramConfig `yaml:"diagram"`
	}

	S3Config struct {
		Endpoint        string       `yaml:"endpoint" validate:"omitempty,url"`
		AccessKey       SecretString `yaml:"access_key"`
		SecretKey       SecretString `yaml:"secret_key"`
		AddressingStyle string       `yaml:"addressing_style" validate:"oneof=auto path virtual"`
	}

	APIConfig struct {
		BaseURL string       `yaml:"base_url" validate:"omitempty,url"`
		Token   SecretString `yaml:"token"`
	}

	FetchConfig struct {
		TimeoutSec int       `yaml:"timeout_sec" validate:"min=1"`
		S3         S3Config  `yaml:"s3"`
		API        APIConfig `yaml:"api"`
	}

	StoreConfig struct {
		Database string `yaml:"database"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Fetch     FetchConfig    `yaml:"fetch"`
		Store     StoreConfig    `yaml:"store"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(validateConfig)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// validateConfig carries cross-field rules the tag syntax cannot express
// over enum typed fields.
func validateConfig(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Document.Title.Source == common.TitleSourceAiGenerated && len(cfg.Document.Title.AIModel) == 0 {
		sl.ReportError(cfg.Document.Title.AIModel, "Document.Title.AIModel", "AIModel", "required_for_ai_title", "")
	}
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

// Dump serializes active configuration, hiding secrets.
func Dump(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// MaxEmbedBytes converts configured image embedding cap to bytes.
func (c *ImagesConfig) MaxEmbedBytes() int64 {
	mb := c.MaxEmbedMB
	if mb < 1 {
		mb = 1
	}
	return int64(mb) * 1024 * 1024
}

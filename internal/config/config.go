package config

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const DefaultFile = "brunoapi.yaml"

type Config struct {
	Spec    string       `koanf:"spec"`
	Import  ImportConfig `koanf:"import"`
	Export  ExportConfig `koanf:"export"`
	Verbose bool         `koanf:"verbose"`
}

type ImportConfig struct {
	OutputDir string `koanf:"output-dir"`
	Name      string `koanf:"name"`
	GroupBy   string `koanf:"group-by"`
}

type ExportConfig struct {
	CollectionDir string `koanf:"collection-dir"`
	Output        string `koanf:"output"`
	Validate      bool   `koanf:"validate"`
}

// BindGlobalFlags binds the flags shared by every command.
func BindGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: "+DefaultFile+")")
	flags.BoolP("verbose", "v", false, "Print written files and full error chains")
}

func BindImportFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("spec", "s", "", "OpenAPI spec file path or URL")
	flags.StringP("output-dir", "o", "", "Directory to write the collection to")
	flags.StringP("name", "n", "", "Collection name (default: spec title)")
	flags.String("group-by", "", "Group requests into folders by: tags, path")
}

func BindExportFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("collection-dir", "d", "", "Collection directory to read")
	flags.StringP("output", "o", "", "OpenAPI JSON file to write")
	flags.Bool("validate", false, "Validate the written document")
}

// Load reads the config file, if any, from fs and overlays the flags set on
// cmd. Without an explicit --config, DefaultFile is used when fs has one.
func Load(fs afero.Fs, cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	configFile := getString(cmd, "config")
	if configFile == "" {
		if ok, _ := afero.Exists(fs, DefaultFile); ok {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(fileProvider(fs, configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// fileProvider reads real files through koanf's file provider and anything
// else through fs.
func fileProvider(fs afero.Fs, path string) koanf.Provider {
	if _, ok := fs.(*afero.OsFs); ok {
		return file.Provider(path)
	}
	return &fsProvider{fs: fs, path: path}
}

type fsProvider struct {
	fs   afero.Fs
	path string
}

func (p *fsProvider) ReadBytes() ([]byte, error) {
	return afero.ReadFile(p.fs, p.path)
}

func (p *fsProvider) Read() (map[string]any, error) {
	return nil, errors.New("config file provider does not support Read()")
}

func getString(cmd *cobra.Command, name string) string {
	if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
		return v
	}
	if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
		return v
	}
	return ""
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	stringFlags := map[string]string{
		"spec":           "spec",
		"output-dir":     "import.output-dir",
		"name":           "import.name",
		"group-by":       "import.group-by",
		"collection-dir": "export.collection-dir",
		"output":         "export.output",
	}
	for flag, key := range stringFlags {
		if v := getString(cmd, flag); v != "" {
			m[key] = v
		}
	}

	if flagChanged("validate") {
		m["export.validate"] = getBool("validate")
	}
	if flagChanged("verbose") {
		m["verbose"] = getBool("verbose")
	}

	return m
}

func (c *Config) ValidateImport() error {
	if c.Spec == "" {
		return errors.New("spec file is required")
	}
	if c.Import.OutputDir == "" {
		return errors.New("output directory is required")
	}
	switch c.Import.GroupBy {
	case "", "tags", "path":
	default:
		return fmt.Errorf("invalid group-by: %s (valid: tags, path)", c.Import.GroupBy)
	}
	return nil
}

func (c *Config) ValidateExport() error {
	if c.Export.CollectionDir == "" {
		return errors.New("collection directory is required")
	}
	if c.Export.Output == "" {
		return errors.New("output file is required")
	}
	return nil
}

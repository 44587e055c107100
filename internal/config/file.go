package config

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// FileConfig holds option defaults read from a YAML file. Options given on the
// command line take precedence.
type FileConfig struct {
	Table            string `yaml:"table"`
	Engine           string `yaml:"engine"`
	EmptyTable       string `yaml:"empty_table"`
	DefaultInterface *int   `yaml:"default_interface"`
	NoResolve        *bool  `yaml:"no_resolve"`
	CompareKernel    *bool  `yaml:"compare_kernel"`
	HashAlgorithm    string `yaml:"hash_algorithm"`
	MetricsFile      string `yaml:"metrics_file"`
	Log              string `yaml:"log"`
	LogLevel         string `yaml:"log_level"`
}

// LoadFile reads a YAML config file. Unknown keys are rejected.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig

	f, err := os.Open(path)
	if err != nil {
		return fc, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

func (fc FileConfig) apply(args *Args, fs *flag.FlagSet) {
	setString := func(name string, dst *string, v string) {
		if v != "" && !fs.Changed(name) {
			*dst = v
		}
	}
	setString("table", &args.TableFile, fc.Table)
	setString("engine", &args.Engine, fc.Engine)
	setString("empty-table", &args.EmptyTable, fc.EmptyTable)
	setString("hash-algorithm", &args.HashAlgorithm, fc.HashAlgorithm)
	setString("metrics-file", &args.MetricsFile, fc.MetricsFile)
	setString("log", &args.Log, fc.Log)
	setString("log-level", &args.LogLevel, fc.LogLevel)

	if fc.DefaultInterface != nil && !fs.Changed("default-interface") {
		args.DefaultInterface = *fc.DefaultInterface
	}
	if fc.NoResolve != nil && !fs.Changed("no-resolve") {
		args.NoResolve = *fc.NoResolve
	}
	if fc.CompareKernel != nil && !fs.Changed("compare-kernel") {
		args.CompareKernel = *fc.CompareKernel
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/riskloom-cli/internal/risk"
	"github.com/KaramelBytes/riskloom-cli/internal/store"
)

// Global configuration structure.
type Global struct {
	// Tier thresholds
	AttendanceLow  float64 `mapstructure:"attendance_low" yaml:"attendance_low" json:"attendance_low"`
	AttendanceMid  float64 `mapstructure:"attendance_mid" yaml:"attendance_mid" json:"attendance_mid"`
	MarksLow       float64 `mapstructure:"marks_low" yaml:"marks_low" json:"marks_low"`
	MarksMid       float64 `mapstructure:"marks_mid" yaml:"marks_mid" json:"marks_mid"`
	FeeRedRatio    float64 `mapstructure:"fee_red_ratio" yaml:"fee_red_ratio" json:"fee_red_ratio"`
	FeeOrangeRatio float64 `mapstructure:"fee_orange_ratio" yaml:"fee_orange_ratio" json:"fee_orange_ratio"`

	// Dropout heuristic
	WeightAttendance float64 `mapstructure:"weight_attendance" yaml:"weight_attendance" json:"weight_attendance"`
	WeightMarks      float64 `mapstructure:"weight_marks" yaml:"weight_marks" json:"weight_marks"`
	WeightFee        float64 `mapstructure:"weight_fee" yaml:"weight_fee" json:"weight_fee"`
	NeutralPrior     float64 `mapstructure:"neutral_prior" yaml:"neutral_prior" json:"neutral_prior"`
	TotalFee         float64 `mapstructure:"total_fee" yaml:"total_fee" json:"total_fee"`

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format" json:"output_format"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`

	// Postgres sink
	DBURL    string `mapstructure:"db_url" yaml:"db_url" json:"db_url"`
	DBSchema string `mapstructure:"db_schema" yaml:"db_schema" json:"db_schema"`

	// envDBURL is the DBURL value taken from RISKLOOM_DB_URL or DATABASE_URL;
	// fileDBURL is what the config file held. Save never writes envDBURL back.
	envDBURL  string
	fileDBURL string
}

// RiskConfig converts the loaded values into the scorer configuration.
func (g *Global) RiskConfig() risk.Config {
	return risk.Config{
		AttendanceLow:  g.AttendanceLow,
		AttendanceMid:  g.AttendanceMid,
		MarksLow:       g.MarksLow,
		MarksMid:       g.MarksMid,
		FeeRedRatio:    g.FeeRedRatio,
		FeeOrangeRatio: g.FeeOrangeRatio,
		Weights: risk.Weights{
			Attendance: g.WeightAttendance,
			Marks:      g.WeightMarks,
			Fee:        g.WeightFee,
		},
		NeutralPrior: g.NeutralPrior,
		TotalFee:     g.TotalFee,
	}
}

// Default returns the configuration used when nothing is loaded.
func Default() *Global {
	g := &Global{}
	v := viper.New()
	setDefaults(v)
	_ = v.Unmarshal(g)
	return g
}

func setDefaults(v *viper.Viper) {
	d := risk.DefaultConfig()
	v.SetDefault("attendance_low", d.AttendanceLow)
	v.SetDefault("attendance_mid", d.AttendanceMid)
	v.SetDefault("marks_low", d.MarksLow)
	v.SetDefault("marks_mid", d.MarksMid)
	v.SetDefault("fee_red_ratio", d.FeeRedRatio)
	v.SetDefault("fee_orange_ratio", d.FeeOrangeRatio)
	v.SetDefault("weight_attendance", d.Weights.Attendance)
	v.SetDefault("weight_marks", d.Weights.Marks)
	v.SetDefault("weight_fee", d.Weights.Fee)
	v.SetDefault("neutral_prior", d.NeutralPrior)
	v.SetDefault("total_fee", d.TotalFee)
	v.SetDefault("output_format", "csv")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("db_url", "")
	v.SetDefault("db_schema", store.DefaultSchema)
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.riskloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	out := *c
	if c.envDBURL != "" && c.DBURL == c.envDBURL {
		out.DBURL = c.fileDBURL
	}
	b, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. RISKLOOM_DB_URL falls back to DATABASE_URL.
// A database URL that came from the environment is remembered so Save keeps it out of the file.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("RISKLOOM")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if os.Getenv("RISKLOOM_DB_URL") != "" {
		c.envDBURL = c.DBURL
	} else if c.DBURL == "" {
		c.DBURL = os.Getenv("DATABASE_URL")
		c.envDBURL = c.DBURL
	}
	if c.envDBURL != "" {
		c.fileDBURL = fileValue(v.ConfigFileUsed(), "db_url")
	}
	return &c, nil
}

// fileValue reads key from the config file alone, without env overrides.
func fileValue(path, key string) string {
	if path == "" {
		return ""
	}
	fv := viper.New()
	fv.SetConfigFile(path)
	if err := fv.ReadInConfig(); err != nil {
		return ""
	}
	return fv.GetString(key)
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".riskloom"), nil
}

package logger

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/philipp01105/treelog/core"
	"github.com/philipp01105/treelog/formatter"
	"github.com/philipp01105/treelog/handler"
	"github.com/philipp01105/treelog/handler/consolehandler"
	"github.com/philipp01105/treelog/handler/filehandler"
)

// Config is the declarative form of a System's setup. Absent fields
// leave the current setting alone.
//
//	levels: [TRACE, DEBUG, INFO, WARN, ERROR, CRITICAL]
//	silence: console
//	handlers:
//	  console:
//	    type: console
//	    colors: auto
//	  audit:
//	    type: file
//	    filename: /var/log/app/audit.log
//	    format: json
//	    level: WARN
//	    max_size: 10485760
//	    max_backups: 5
//	loggers:
//	  root:
//	    level: INFO
//	    handlers: [console]
//	  app.db:
//	    level: DEBUG
//	    propagate: false
//	    handlers: [audit]
//	    extra: {component: db}
type Config struct {
	// Levels, when present, must match the System's level list
	Levels   []string                 `yaml:"levels"`
	Silence  string                   `yaml:"silence"`
	Handlers map[string]HandlerConfig `yaml:"handlers"`
	Loggers  map[string]LoggerConfig  `yaml:"loggers"`
}

// HandlerConfig describes one console or file handler
type HandlerConfig struct {
	Type     string `yaml:"type"`
	Level    string `yaml:"level"`
	Silenced bool   `yaml:"silenced"`

	Format          string `yaml:"format"`
	Template        string `yaml:"template"`
	Caller          bool   `yaml:"caller"`
	OmitExtra       bool   `yaml:"omit_extra"`
	TimestampFormat string `yaml:"timestamp_format"`

	// console
	Output       string `yaml:"output"`
	Colors       string `yaml:"colors"`
	DateOnChange bool   `yaml:"date_on_change"`

	// file
	Filename       string        `yaml:"filename"`
	Mode           string        `yaml:"mode"`
	Perm           string        `yaml:"perm"`
	MaxSize        int64         `yaml:"max_size"`
	MaxBackups     int           `yaml:"max_backups"`
	MaxAge         time.Duration `yaml:"max_age"`
	RotateInterval time.Duration `yaml:"rotate_interval"`
}

// LoggerConfig describes one logger; "root" names the root logger
type LoggerConfig struct {
	Level     string         `yaml:"level"`
	Propagate *bool          `yaml:"propagate"`
	Silenced  *bool          `yaml:"silenced"`
	Extra     map[string]any `yaml:"extra"`
	Handlers  []string       `yaml:"handlers"`
}

// LoadConfig parses a YAML configuration. Unknown keys are ignored.
func LoadConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfig(data)
}

// NewSystem creates a System using the configured level list and applies
// the rest of the configuration.
func (c *Config) NewSystem(opts ...Option) (*System, error) {
	if len(c.Levels) > 0 {
		levels, err := core.NewLevels(c.Levels...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLevels(levels))
	}
	s := NewSystem(opts...)
	if err := s.Configure(c); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure merges cfg into s. Nothing is applied when cfg refers to an
// unknown level, handler or handler type.
func (s *System) Configure(cfg *Config) error {
	err := s.checkLevels(cfg.Levels)

	switch strings.ToLower(cfg.Silence) {
	case "", "none", "all", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("silence: unknown mode %q", cfg.Silence))
	}

	built := make(map[string]handler.Handler, len(cfg.Handlers))
	for _, name := range sortedKeys(cfg.Handlers) {
		h, herr := s.buildHandler(name, cfg.Handlers[name])
		if herr != nil {
			err = multierr.Append(err, fmt.Errorf("handler %q: %w", name, herr))
			continue
		}
		built[name] = h
	}

	levels := make(map[string]int, len(cfg.Loggers))
	used := make(map[string]bool, len(built))
	for _, name := range sortedKeys(cfg.Loggers) {
		lc := cfg.Loggers[name]
		if lc.Level != "" {
			idx, lerr := s.levels.IndexOf(lc.Level)
			if lerr != nil {
				err = multierr.Append(err, fmt.Errorf("logger %q: %w", name, lerr))
			}
			levels[name] = idx
		}
		for _, ref := range lc.Handlers {
			if _, ok := cfg.Handlers[ref]; !ok {
				err = multierr.Append(err, fmt.Errorf("logger %q: unknown handler %q", name, ref))
			}
			used[ref] = true
		}
	}

	if err != nil {
		for _, h := range built {
			_ = h.Close()
		}
		return err
	}

	switch strings.ToLower(cfg.Silence) {
	case "all":
		s.Silence(true)
	case "console":
		s.Silence(false)
	case "none":
		s.Unsilence()
	}

	for _, name := range sortedKeys(cfg.Loggers) {
		lc := cfg.Loggers[name]
		l := s.GetLogger(name)
		if idx, ok := levels[name]; ok {
			l.level = idx
		}
		if lc.Propagate != nil {
			l.SetPropagate(*lc.Propagate)
		}
		if lc.Silenced != nil {
			if *lc.Silenced {
				l.Silence()
			} else {
				l.Unsilence()
			}
		}
		l.SetExtras(lc.Extra)
		if lc.Handlers != nil {
			hs := make([]handler.Handler, 0, len(lc.Handlers))
			for _, ref := range lc.Handlers {
				hs = append(hs, built[ref])
			}
			l.SetHandlers(hs...)
		}
	}

	for name, h := range built {
		if !used[name] {
			_ = h.Close()
		}
	}
	return nil
}

func (s *System) checkLevels(names []string) error {
	if len(names) == 0 {
		return nil
	}
	have := s.levels.Names()
	if len(names) != len(have) {
		return fmt.Errorf("levels %v do not match %v", names, have)
	}
	for i, n := range names {
		if strings.ToUpper(strings.TrimSpace(n)) != have[i] {
			return fmt.Errorf("levels %v do not match %v", names, have)
		}
	}
	return nil
}

func (s *System) buildHandler(name string, hc HandlerConfig) (handler.Handler, error) {
	var level *int
	if hc.Level != "" {
		idx, err := s.levels.IndexOf(hc.Level)
		if err != nil {
			return nil, err
		}
		level = &idx
	}

	fcfg := formatter.Config{
		Template:        hc.Template,
		IncludeCaller:   hc.Caller,
		OmitExtra:       hc.OmitExtra,
		TimestampFormat: hc.TimestampFormat,
	}
	var f formatter.Formatter
	switch strings.ToLower(hc.Format) {
	case "", "text":
		if hc.Template == "" && hc.DateOnChange {
			fcfg.Template = consolehandler.DefaultDateTemplate
		}
		f = formatter.NewTextFormatter(fcfg)
	case "json":
		f = formatter.NewJSONFormatter(fcfg)
	default:
		return nil, fmt.Errorf("unknown format %q", hc.Format)
	}

	var h interface {
		handler.Handler
		SetName(string)
		Silence()
	}
	switch strings.ToLower(hc.Type) {
	case "", "console":
		w := os.Stdout
		switch strings.ToLower(hc.Output) {
		case "", "stdout":
		case "stderr":
			w = os.Stderr
		default:
			return nil, fmt.Errorf("unknown console output %q", hc.Output)
		}
		h = consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
			Writer:       w,
			Formatter:    f,
			Colors:       consolehandler.ParseColorMode(strings.ToLower(hc.Colors)),
			DateOnChange: hc.DateOnChange,
			Level:        level,
		})
	case "file":
		fc := filehandler.FileConfig{
			Filename:       hc.Filename,
			Formatter:      f,
			MaxSize:        hc.MaxSize,
			MaxBackups:     hc.MaxBackups,
			MaxAge:         hc.MaxAge,
			RotateInterval: hc.RotateInterval,
			Level:          level,
		}
		switch strings.ToLower(hc.Mode) {
		case "", "append":
		case "truncate":
			fc.Flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		default:
			return nil, fmt.Errorf("unknown file mode %q", hc.Mode)
		}
		if hc.Perm != "" {
			perm, err := strconv.ParseUint(hc.Perm, 8, 32)
			if err != nil {
				return nil, fmt.Errorf("perm: %w", err)
			}
			fc.Perm = os.FileMode(perm)
		}
		fh, err := filehandler.NewFileHandler(fc)
		if err != nil {
			return nil, err
		}
		h = fh
	default:
		return nil, fmt.Errorf("unknown handler type %q", hc.Type)
	}

	h.SetName(name)
	if hc.Silenced {
		h.Silence()
	}
	return h, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

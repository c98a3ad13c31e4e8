package logging

import "time"

type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration
}

type JSONConfig struct {
	FilePath      string
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	// ReportTimestamp prefixes each console line with the wall clock time.
	ReportTimestamp bool
	Prefix          string
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FlushInterval: 2 * time.Second,
		},
		Console: ConsoleConfig{
			ReportTimestamp: true,
			Prefix:          "arena",
		},
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

// WithSink returns a copy of the config with the named sink enabled.
func (c Config) WithSink(name string) Config {
	if c.HasSink(name) {
		return c
	}
	enabled := make([]string, 0, len(c.EnabledSinks)+1)
	enabled = append(enabled, c.EnabledSinks...)
	c.EnabledSinks = append(enabled, name)
	return c
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}

package config

// Config holds the supervisor's main configuration. It is built once at
// startup and passed into each component; nothing reads ambient state.
type Config struct {
	// RuleFile is the path of the forwarding rule file.
	RuleFile string `yaml:"ruleFile"`

	// StateDir is the primary directory for the process registry. When it
	// cannot be created or written, the registry falls back to ~/.fwdctl.
	StateDir string `yaml:"stateDir"`

	// EngineBin is the forwarding engine binary.
	EngineBin string `yaml:"engineBin"`

	// EngineOptions is appended verbatim (shell-style split) to every
	// engine invocation.
	EngineOptions string `yaml:"engineOptions"`

	// PortCheck enables the listen pre-check before launching the engine.
	PortCheck bool `yaml:"portCheck"`

	LogEnabled bool   `yaml:"logEnabled"`
	LogFile    string `yaml:"logFile"`

	// EngineLogFile receives the engine processes' own output. Empty means
	// the output is discarded.
	EngineLogFile string `yaml:"engineLogFile"`

	// AutoRestart is advisory: it records the operator's intent that a
	// crashed forward be restarted by an external process supervisor. The
	// core only surfaces it.
	AutoRestart bool `yaml:"autoRestart"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RuleFile:      "/etc/fwdctl/forwards.conf",
		StateDir:      "/var/lib/fwdctl",
		EngineBin:     "socat",
		EngineOptions: "",
		PortCheck:     true,
		LogEnabled:    true,
		LogFile:       "",
		EngineLogFile: "",
		AutoRestart:   false,
	}
}

package types

// ProbeConf holds the tunable parts of a probe run. Zero values fall back to
// the built-in endpoint and timeouts.
type ProbeConf struct {
	TargetIP         string `ini:"target_ip"`
	TargetPort       int    `ini:"target_port"`
	ConnectTimeoutMs int    `ini:"connect_timeout_ms"`
	WriteTimeoutMs   int    `ini:"write_timeout_ms"`
}

// CaptureConf configures the capture listener used to verify probe output.
type CaptureConf struct {
	Listen        string `ini:"listen"`
	ReadTimeoutMs int    `ini:"read_timeout_ms"`
	// Reply answers each capture as a minimal LDAP server would.
	Reply bool `ini:"reply"`
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level string `ini:"level"`
}

// Config is the unified configuration loaded from probe.ini.
type Config struct {
	ProbeConf   `ini:"probe"`
	CaptureConf `ini:"capture"`
	LogConf     `ini:"log"`
}

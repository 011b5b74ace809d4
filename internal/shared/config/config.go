package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/ini.v1"

	"ldapbind_probe/internal/shared/types"
)

// LogLevelEnv overrides the [log] level from the ini file.
const LogLevelEnv = "PROBE_LOG_LEVEL"

// LoadIni loads probe.ini into cfg. A missing file is not an error: every
// field keeps its zero value and the built-in defaults apply.
func LoadIni(cfg *types.Config, fileName string) error {
	if _, err := os.Stat(fileName); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat config file: %w", err)
		}
	} else {
		iniFile, err := ini.Load(fileName)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		if err := iniFile.MapTo(cfg); err != nil {
			return fmt.Errorf("failed to map config file: %w", err)
		}
	}
	overrideFromEnvString(&cfg.LogConf.Level, LogLevelEnv)
	return nil
}

func overrideFromEnvString(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}

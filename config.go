package fileutil

import (
	"strings"

	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Store driver backing every area (local, memory, billy, sftp)
	Driver string `env:"FILEUTIL_DRIVER,default:local"`

	// Root directory; each area lives in a lower-cased subdirectory of it
	Root string `env:"FILEUTIL_ROOT,default:./appdata"`

	// Area used by the *Data* helpers
	DataArea string `env:"FILEUTIL_DATA_AREA,default:DATA"`

	// Extra entry names skipped by CopyTree, comma-separated
	Ignore string `env:"FILEUTIL_IGNORE"`
	// Extra glob patterns matched against entry names, comma-separated
	IgnorePatterns string `env:"FILEUTIL_IGNORE_PATTERNS"`

	// Areas mounted read-only, comma-separated (e.g. "LIBRARY")
	ReadOnlyAreas string `env:"FILEUTIL_READ_ONLY_AREAS"`

	// Minimum log level (debug, info, warn, error)
	LogLevel string `env:"FILEUTIL_LOG_LEVEL,default:info"`

	// billy driver: use memfs instead of osfs
	BillyInMemory bool `env:"FILEUTIL_BILLY_IN_MEMORY,default:false"`

	// SFTP driver configuration
	SFTPHost       string `env:"FILEUTIL_SFTP_HOST"`
	SFTPPort       int    `env:"FILEUTIL_SFTP_PORT,default:22"`
	SFTPUsername   string `env:"FILEUTIL_SFTP_USERNAME"`
	SFTPPassword   string `env:"FILEUTIL_SFTP_PASSWORD"`
	SFTPPrivateKey string `env:"FILEUTIL_SFTP_PRIVATE_KEY"` // Path to private key file
	SFTPBasePath   string `env:"FILEUTIL_SFTP_BASE_PATH"`
	// known_hosts file; when empty any host key is accepted
	SFTPKnownHosts string `env:"FILEUTIL_SFTP_KNOWN_HOSTS"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList splits a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

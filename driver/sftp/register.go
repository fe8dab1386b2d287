package sftp

import (
	"fmt"
	"os"
	"path"

	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/gobeaver/fileutil"
)

func init() {
	fileutil.RegisterDriver("sftp", func(cfg *fileutil.Config, area fileutil.Area) (fileutil.Store, error) {
		if cfg.SFTPHost == "" {
			return nil, fmt.Errorf("SFTP host is required")
		}

		sftpConfig := Config{
			Host:     cfg.SFTPHost,
			Port:     cfg.SFTPPort,
			Username: cfg.SFTPUsername,
			Password: cfg.SFTPPassword,
			BasePath: path.Join("/", cfg.SFTPBasePath, fileutil.AreaDir(area)),
		}

		// Load private key if specified
		if cfg.SFTPPrivateKey != "" {
			keyData, err := os.ReadFile(cfg.SFTPPrivateKey)
			if err != nil {
				return nil, fmt.Errorf("failed to read private key: %w", err)
			}
			sftpConfig.PrivateKey = keyData
		}

		if cfg.SFTPKnownHosts != "" {
			callback, err := knownhosts.New(cfg.SFTPKnownHosts)
			if err != nil {
				return nil, fmt.Errorf("failed to load known_hosts: %w", err)
			}
			sftpConfig.HostKeyCallback = callback
		}

		return New(sftpConfig)
	})
}

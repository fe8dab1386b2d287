package billy

import (
	"path/filepath"

	"github.com/gobeaver/fileutil"
)

func init() {
	fileutil.RegisterDriver("billy", func(cfg *fileutil.Config, area fileutil.Area) (fileutil.Store, error) {
		if cfg.BillyInMemory {
			return NewMemory(), nil
		}
		return NewLocal(filepath.Join(cfg.Root, fileutil.AreaDir(area)))
	})
}

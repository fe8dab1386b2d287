package local

import (
	"path/filepath"

	"github.com/gobeaver/fileutil"
)

func init() {
	fileutil.RegisterDriver("local", func(cfg *fileutil.Config, area fileutil.Area) (fileutil.Store, error) {
		return New(filepath.Join(cfg.Root, fileutil.AreaDir(area)))
	})
}

package memory

import "github.com/gobeaver/fileutil"

func init() {
	fileutil.RegisterDriver("memory", func(cfg *fileutil.Config, area fileutil.Area) (fileutil.Store, error) {
		return New(Config{Name: fileutil.AreaDir(area)}), nil
	})
}

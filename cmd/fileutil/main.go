package main

import (
	"github.com/gobeaver/fileutil/cmd/fileutil/cmd"

	_ "github.com/gobeaver/fileutil/driver/billy"
	_ "github.com/gobeaver/fileutil/driver/local"
	_ "github.com/gobeaver/fileutil/driver/memory"
	_ "github.com/gobeaver/fileutil/driver/sftp"
)

func main() {
	cmd.Execute()
}

package main

import (
	"fmt"
	"os"

	"github.com/mwantia/docarchive/cmd/docarchive/cli"
	"github.com/mwantia/docarchive/cmd/docarchive/cli/client"
	"github.com/mwantia/docarchive/cmd/docarchive/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(server.NewServeCommand())
	root.AddCommand(server.NewConfigCommand())
	root.AddCommand(server.NewMigrateCommand())
	root.AddCommand(server.NewSeedCommand())

	root.AddCommand(client.NewTreeCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

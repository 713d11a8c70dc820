package main

import (
	"fmt"
	"os"

	"github.com/Caqil/eccryptor/cmd/eccrypt/cmd"
)

var (
	Version   = "dev"
	BuildTime = ""
	CommitID  = ""
)

func main() {
	cli := cmd.NewCli()
	cli.SetVersion(cmd.VersionInfo{Version: Version, BuildTime: BuildTime, CommitID: CommitID})
	cli.AddCommands(cmd.Commands)

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "eccrypt:", err)
		os.Exit(1)
	}
}

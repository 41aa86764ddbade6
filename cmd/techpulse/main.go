package main

import "github.com/JCZoom/techpulse-blog/internal/cli"

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cli.SetVersionInfo(version, commit)
	cli.Execute()
}

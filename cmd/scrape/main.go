package main

import (
	"os"

	"search-insight-miner/cmd/scrape/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

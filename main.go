package main

import "striker-stats-server/cmd"

func main() {
	cmd.Execute()
}

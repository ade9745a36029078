package main

import "github.com/KaramelBytes/colstats/cmd"

func main() {
	cmd.Execute()
}

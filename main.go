package main

import "github.com/KaramelBytes/summarease-cli/cmd"

func main() {
	cmd.Execute()
}

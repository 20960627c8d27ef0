package main

import "github.com/corrix-dev/corrix/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/gastoscl/rendiciones/cmd"

func main() {
	cmd.Execute()
}

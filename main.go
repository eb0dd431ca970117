package main

import "github.com/theirongolddev/ascendia/cmd"

func main() {
	cmd.Execute()
}

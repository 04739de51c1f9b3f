package main

import "github.com/kestrelhq/kestrel/cmd/kestrelctl/cmd"

func main() {
	cmd.Execute()
}

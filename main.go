package main

import "github.com/veraclabs/anonygo/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"go.quickrt.io/quickrt/cmd"
)

func main() {
	cmd.Execute()
}

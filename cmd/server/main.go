package main

import "github.com/dreamtoapp/smartcrowds-server/cmd/server/cmd"

func main() {
	cmd.Execute()
}

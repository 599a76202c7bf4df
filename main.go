package main

import "github.com/teamsales/salesportal/cmd"

func main() {
	cmd.Execute()
}

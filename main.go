package main

import "github.com/tristendillon/routefix/cmd"

func main() {
	cmd.Execute()
}

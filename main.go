package main

import "github.com/aceteam-ai/hacker-dash/cmd"

func main() {
	cmd.Execute()
}

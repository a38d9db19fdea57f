package main

import "github.com/mvwi/stash-triage/internal/cmd"

func main() {
	cmd.Execute()
}

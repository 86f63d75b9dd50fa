package main

import "github.com/Skotchmaster/storefront/cmd/shopctl/commands"

func main() {
	commands.Execute()
}

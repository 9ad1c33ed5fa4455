package main

import "github.com/xkinput/keytao-bot/cmd"

func main() {
	cmd.Execute()
}

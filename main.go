package main

import "github.com/CosmoTheDev/qgnotify/cmd"

func main() {
	cmd.Execute()
}

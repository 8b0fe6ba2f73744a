package main

import "github.com/TrevorS/balltree/internal/cli"

func main() {
	cli.Execute()
}

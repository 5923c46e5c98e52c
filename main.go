package main

import "github.com/zggff/shopbot/cmd"

func main() {
	cmd.Execute()
}

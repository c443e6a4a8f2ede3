package main

import "github.com/0xacademy/academy/cmd/academy/cmd"

func main() {
	cmd.Execute()
}

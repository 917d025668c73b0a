package main

import "medchain/cmd"

func main() {
	cmd.Execute()
}

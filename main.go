package main

import "github.com/user/cliporama/cmd"

func main() {
	cmd.Execute()
}

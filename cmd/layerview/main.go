package main

import "github.com/ThatOtherAndrew/Layerview/cmd"

func main() {
	cmd.Execute()
}

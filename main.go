package main

import "github.com/jsphweid/chartconv/cmd"

func main() {
	cmd.Execute()
}

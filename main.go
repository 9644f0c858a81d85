package main

import "frame-extractor/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/OpenTraceLab/padpainter/cmd/padpainter/cmd"

func main() {
	cmd.Execute()
}

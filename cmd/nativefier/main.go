package main

import "github.com/oshokin/nativefier/cmd/nativefier/cmd"

func main() {
	cmd.Execute()
}

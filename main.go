package main

import "github.com/derickschaefer/ezdota/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/frahmantamala/invoice-approval/cmd"

func main() {
	cmd.Execute()
}

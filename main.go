package main

import "mnemo/cardmill/cmd"

func main() {
	cmd.Execute()
}

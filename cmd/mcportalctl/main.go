package main

import "go.pilab.hu/mcportal/cmd/mcportalctl/cmd"

func main() {
	cmd.Execute()
}

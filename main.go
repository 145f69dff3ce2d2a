package main

import "spacetwo/asset-api/cmd"

func main() {
	cmd.Execute()
}

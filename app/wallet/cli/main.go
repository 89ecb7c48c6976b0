package main

import "github.com/ardanlabs/naivecoin/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}

package main

import "chessnet/cmd/chessnet-tool/cmd"

func main() {
	cmd.Execute()
}

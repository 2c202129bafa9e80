package main

import "chessnet/cmd/chessnet-bot/cmd"

func main() {
	cmd.Execute()
}

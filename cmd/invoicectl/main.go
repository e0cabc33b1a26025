package main

import "invoice-service/internal/cli"

func main() {
	cli.Execute()
}

package main

import (
	"os"

	"github.com/GoCampusAuth/GoCampusAuth/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

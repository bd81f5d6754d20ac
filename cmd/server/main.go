package main

import (
	"fmt"
	"os"

	"taskflow/internal/app"
)

// @title           Taskflow API
// @version         1.0
// @description     Task tracking and report generation.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

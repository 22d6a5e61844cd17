package main

import (
	"fmt"
	"os"

	"github.com/impactreport/impact/backend/go-services/pkg/logger"
)

var Version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := newRootCmd(openBackends).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

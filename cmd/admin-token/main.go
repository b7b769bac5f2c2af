package main

import (
	"flag"
	"os"

	"github.com/louisbranch/castellan/internal/platform/config"
	"github.com/louisbranch/castellan/internal/tools/admintoken"
)

func main() {
	cfg, err := admintoken.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if cfg.Secret == "" {
		cfg.Secret = os.Getenv("CASTELLAN_OPS_JWT_SECRET")
	}
	if err := admintoken.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("mint token: %v", err)
	}
}

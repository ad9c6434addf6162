// flags.go
package main

import (
	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/spf13/pflag"
)

// flags are command line overrides applied on top of the environment
type flags struct {
	envFile string
	port    int
	catalog string
}

func parseFlags(args []string) (flags, error) {
	fs := pflag.NewFlagSet("peekpa", pflag.ContinueOnError)

	var f flags
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.IntVarP(&f.port, "port", "p", 0, "HTTP port (overrides SERVER_PORT)")
	fs.StringVar(&f.catalog, "catalog", "", "home page catalog YAML (overrides CATALOG_FILE)")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

func (f flags) apply(cfg *config.Config) {
	if f.port > 0 {
		cfg.Server.Port = f.port
	}
	if f.catalog != "" {
		cfg.Catalog.File = f.catalog
	}
}

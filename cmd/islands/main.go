package main

import (
	"fmt"
	"os"

	"github.com/pthm/islands/lib/generator"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "check":
		err = runCheck(args, os.Stdout)
	case "generate":
		err = runGenerate(args)
	case "clean":
		err = runClean(args)
	case "version":
		fmt.Printf("islands version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`islands - server-rendered islands for Go

Usage:
  islands <command> [arguments]

Commands:
  serve [--config file]        Run the storefront server
  check [--dev] <url|file>     Hydrate a rendered page headlessly and report each island
  generate [packages]          Generate islands_registry_gen.go from //islands:component directives
  clean [packages]             Remove generated registry files
  version                      Print version
  help                         Show this help

Options for generate:
  --dry-run                    Show what would be generated without writing files

Examples:
  islands serve --config islands.yaml
  islands check http://localhost:3000/
  islands generate ./internal/components
  islands generate --dry-run ./...`)
}

func runGenerate(args []string) error {
	var dryRun bool
	var patterns []string

	for _, arg := range args {
		if arg == "--dry-run" {
			dryRun = true
		} else {
			patterns = append(patterns, arg)
		}
	}

	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	gen := generator.New(generator.Options{
		DryRun: dryRun,
	})

	return gen.Generate(patterns...)
}

func runClean(args []string) error {
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	gen := generator.New(generator.Options{})
	return gen.Clean(patterns...)
}

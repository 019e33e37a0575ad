package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kush-Singh-26/publicd/internal/server"
)

func main() {
	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := server.Run(ctx, args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return
			}
			fmt.Printf("❌ %v\n", err)
			stop()
			os.Exit(1)
		}
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: publicd [command] [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve          Serve public/ and node_modules/ (default)")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nFlags for serve:")
	fmt.Println("  -host <addr>   The host/IP to bind to (env HOST)")
	fmt.Println("  -port <n>      The port to listen on (env PORT, default 8000)")
	fmt.Println("  -root <dir>    Directory to serve, repeat in priority order")
	fmt.Println("  -index <file>  Landing document served for / (default index.html)")
	fmt.Println("  -compress      Enable gzip compression")
	fmt.Println("  -minify        Minify HTML, CSS and JS responses")
	fmt.Println("\nSettings may also be kept in publicd.yaml.")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/docsearch/documenter-mcp-server/internal/config"
	"github.com/docsearch/documenter-mcp-server/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	version    = "0.3.0"
	serverName = "documenter-mcp-server"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config.toml")
	httpAddr := flag.String("http", "", "serve MCP over streamable HTTP on this address instead of stdio")
	watch := flag.Bool("watch", false, "rebuild the index when the local search_index.js changes")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s version %s\n", serverName, version)
		os.Exit(0)
	}

	// MCP uses stdout for protocol
	log.SetOutput(os.Stderr)
	log.Printf("%s v%s starting...", serverName, version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *watch {
		cfg.Watch = true
	}

	docSearch, err := tools.NewDocSearch(cfg)
	if err != nil {
		log.Fatalf("Failed to set up documentation search: %v", err)
	}
	defer func() {
		if err := docSearch.Close(); err != nil {
			log.Printf("Error closing doc search: %v", err)
		}
	}()

	server := createMCPServer()
	count := tools.RegisterDocSearchTools(server, docSearch)
	log.Printf("✓ All tools registered: %d tools", count)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		go func() {
			if err := docSearch.Watch(ctx); err != nil {
				log.Printf("Warning: Payload watcher stopped: %v", err)
			}
		}()
	}

	if cfg.HTTPAddr != "" {
		err = serveHTTP(ctx, newRouter(server, docSearch), cfg.HTTPAddr)
	} else {
		log.Printf("✓ Server ready and waiting for connections on stdio")
		err = server.Run(ctx, &mcp.StdioTransport{})
	}
	if err != nil && ctx.Err() == nil {
		log.Printf("Server error: %v", err)
	}
}

// createMCPServer initializes the MCP server
func createMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil,
	)

	log.Printf("Server initialized: %s v%s", serverName, version)
	return server
}

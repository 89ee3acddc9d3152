package tools

import (
	"log"
	"os"
	"path/filepath"
)

const userDataDirName = ".documenter-mcp"

// ResolveDataDir picks the directory for the payload and index when none
// is configured.
func ResolveDataDir() string {
	// Strategy 1: user home directory (standalone installation)
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userDataDir := filepath.Join(homeDir, userDataDirName)
		if info, err := os.Stat(userDataDir); err == nil && info.IsDir() {
			log.Printf("✓ Data directory: %s (user home)", userDataDir)
			return userDataDir
		}
		if err := os.MkdirAll(userDataDir, 0755); err == nil {
			log.Printf("✓ Data directory created: %s", userDataDir)
			return userDataDir
		}
		log.Printf("Warning: Could not create user data directory at %s: %v", userDataDir, err)
	} else {
		log.Printf("Warning: Could not determine user home directory: %v", err)
	}

	// Strategy 2: next to the executable (plugin installation)
	if execPath, err := os.Executable(); err == nil {
		relativeDataDir := filepath.Join(filepath.Dir(execPath), "data")
		if info, err := os.Stat(relativeDataDir); err == nil && info.IsDir() {
			log.Printf("✓ Data directory: %s (relative to binary)", relativeDataDir)
			return relativeDataDir
		}
	}

	// Strategy 3: current working directory
	dataDir := filepath.Join(".", "data")
	log.Printf("⚠️  Data directory (fallback): %s", dataDir)
	return dataDir
}

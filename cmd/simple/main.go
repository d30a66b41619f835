package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lixenwraith/nanolog"
)

const configFile = "simple_config.toml"

// Example TOML content
var tomlContent = `
# Example simple_config.toml
[log]
  level = -4 # Debug
  capacity = 1024
  batch_size = 64
  flush_interval_ms = 100
  format = "text"
  timestamp_style = "iso8601"
  include_caller = true
  output = "file"
  file_path = "./simple_logs/simple.log"
`

func main() {
	fmt.Println("--- Simple Logger Example ---")

	// --- Setup Config ---
	// Create dummy config file
	err := os.WriteFile(configFile, []byte(tomlContent), 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created dummy config file: %s\n", configFile)

	// Load logger settings from the file
	cfg, err := nanolog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// --- Initialize Logger ---
	logger, err := nanolog.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if err := nanolog.Init(logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to install default logger: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Logger initialized.")

	// --- Logging ---
	nanolog.Debug("This is a debug message, user_id:", 123)
	nanolog.Info("Application starting...")
	nanolog.Warn("Potential issue detected, threshold:", 0.95)
	nanolog.Error("An error occurred! code:", 500)

	// Logging from goroutines
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			nanolog.Logf(nanolog.LevelInfo, "Goroutine %d started", id)
			time.Sleep(time.Duration(50+id*50) * time.Millisecond)
			nanolog.Logf(nanolog.LevelInfo, "Goroutine %d finished", id)
		}(i)
	}

	// Wait for goroutines to finish before shutting down logger
	wg.Wait()
	fmt.Println("Goroutines finished.")

	// --- Shutdown Logger ---
	fmt.Println("Shutting down logger...")
	if err := nanolog.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
	} else {
		fmt.Println("Logger shutdown complete.")
	}

	fmt.Println("--- Example Finished ---")
	fmt.Println("Check the log file in './simple_logs'.")
}

// FILE: example/sink/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/nanolog"
)

const logDirectory = "./temp_logs"

// main walks through the built-in sink configurations.
func main() {
	// Ensure a clean state by removing the previous log directory.
	if err := os.RemoveAll(logDirectory); err != nil {
		fmt.Printf("Warning: could not remove old log directory: %v\n", err)
	}

	fmt.Println("--- Running Sink Test Suite ---")
	fmt.Printf("! All file-based logs will be in the '%s' directory.\n\n", logDirectory)

	testFileOnly()
	testStdout()
	testMultiSink()
	testMemorySink()

	fmt.Println("\n--- Sink Test Suite Complete ---")
	fmt.Printf("Check the '%s' directory for log files.\n", logDirectory)
}

// testFileOnly writes only to a file.
func testFileOnly() {
	fmt.Println("[Phase 1.1: File-Only]")
	logger, err := nanolog.NewBuilder().
		Level(nanolog.LevelDebug).
		File(logDirectory + "/file_only.log").
		Build()
	if err != nil {
		fmt.Printf("  ERROR: Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("file-only sink active")
	logger.Debug("debug messages pass the level filter")
	shutdownLogger(logger, "1.1: File-Only")
}

// testStdout writes colored text to the terminal.
func testStdout() {
	fmt.Println("\n[Phase 1.2: Stdout]")
	logger, err := nanolog.NewBuilder().
		Level(nanolog.LevelDebug).
		TimestampISO8601(0).
		EnableColor(true).
		Console().
		Build()
	if err != nil {
		fmt.Printf("  ERROR: Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("this is a debug message")
	logger.Info("this is an info message")
	logger.Warn("this is a warning message")
	logger.Error("this is an error message")
	shutdownLogger(logger, "1.2: Stdout")
}

// testMultiSink fans each record out to stdout and a file.
func testMultiSink() {
	fmt.Println("\n[Phase 1.3: Multi-Sink (Stdout + File)]")
	fileSink, err := nanolog.NewFileSink(logDirectory + "/multi.log")
	if err != nil {
		fmt.Printf("  ERROR: Failed to create file sink: %v\n", err)
		os.Exit(1)
	}
	logger, err := nanolog.NewBuilder().
		Sink(nanolog.NewMultiSink(nanolog.NewConsoleSink(), fileSink)).
		Build()
	if err != nil {
		fmt.Printf("  ERROR: Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("this record lands in two places")
	shutdownLogger(logger, "1.3: Multi-Sink")
}

// testMemorySink captures output for inspection without touching disk.
func testMemorySink() {
	fmt.Println("\n[Phase 1.4: Memory Sink]")
	sink := nanolog.NewMemorySink()
	logger, err := nanolog.NewBuilder().
		SimpleFormat().
		Sink(sink).
		Build()
	if err != nil {
		fmt.Printf("  ERROR: Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("captured in memory")
	logger.Warn("also captured")
	if err := logger.Flush(time.Second); err != nil {
		fmt.Printf("  WARNING: flush error: %v\n", err)
	}
	for _, line := range sink.Lines() {
		fmt.Printf("  captured: %s\n", line)
	}
	shutdownLogger(logger, "1.4: Memory Sink")
}

// shutdownLogger is a helper to gracefully shut down the logger instance.
func shutdownLogger(l *nanolog.Logger, phaseName string) {
	if err := l.Shutdown(); err != nil {
		fmt.Printf("  WARNING: Shutdown error in phase '%s': %v\n", phaseName, err)
	}
}

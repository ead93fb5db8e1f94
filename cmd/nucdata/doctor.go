package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/nucdata/nucdata/internal/config"
)

// Dependencies for testing
var (
	osStat       = os.Stat
	execLookPath = exec.LookPath
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  "Verifies that all system dependencies are properly installed and configured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking system dependencies...")
		allPassed := true

		// Check 1: Internet connection
		fmt.Print("  Internet connection: ")
		if checkInternet() {
			fmt.Println("OK")
		} else {
			fmt.Println("FAILED")
			allPassed = false
		}

		// Check 2: Config file
		fmt.Print("  Config file: ")
		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("WARN (%v)\n", err)
			cfg = config.Default()
		} else {
			fmt.Println("OK")
		}

		// Check 3: Conversion engine
		fmt.Print("  Conversion engine: ")
		if path := checkEngine(cfg.Converter.Command); path != "" {
			fmt.Printf("OK (%s)\n", path)
		} else {
			fmt.Printf("NOT FOUND (%s; convert will be unavailable)\n", cfg.Converter.Command)
		}

		// Check 4: Write permissions
		fmt.Print("  Write permissions: ")
		if checkWritePermissions() {
			fmt.Println("OK")
		} else {
			fmt.Println("FAILED")
			allPassed = false
		}

		// Check 5: Ledger directory
		fmt.Print("  Ledger directory: ")
		if checkLedgerDir(cfg.Ledger.Directory) {
			fmt.Printf("OK (%s)\n", cfg.Ledger.Directory)
		} else {
			fmt.Println("WARN (will be created on first use)")
		}

		fmt.Println()
		if allPassed {
			fmt.Println("All critical checks passed!")
		} else {
			fmt.Println("Some checks failed. Please resolve the issues above.")
		}
		return nil
	},
}

// checkInternet checks if a data server is reachable
func checkInternet() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://www.nndc.bnl.gov", nil)
	if err != nil {
		return false
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}

// checkEngine checks if the conversion engine is on PATH
func checkEngine(command string) string {
	if path, err := execLookPath(command); err == nil {
		return path
	}
	if _, err := osStat(command); err == nil {
		return command
	}
	return ""
}

// checkWritePermissions checks if we can write to the current directory
func checkWritePermissions() bool {
	tmpFile := ".nucdata_test_write"
	f, err := os.Create(tmpFile)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(tmpFile)
	return true
}

// checkLedgerDir checks if the ledger directory exists
func checkLedgerDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Package main is the entry point for the Copilot Cockpit TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/app"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/config"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/logger"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/services"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/tabs/accounts"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/tabs/history"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/ui/tabs/login"
	"github.com/cockpit-tools/copilot-cockpit-tui/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	// Run the application
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Keep log lines off the alternate screen. COCKPIT_LOG_FILE, when
	// set, captures them for debugging.
	if logPath := os.Getenv("COCKPIT_LOG_FILE"); logPath != "" {
		f, openErr := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if openErr != nil {
			return fmt.Errorf("failed to open log file: %w", openErr)
		}
		defer func() { _ = f.Close() }()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}

	// 3. Initialize the service manager
	// This starts the background services: account storage watching and
	// periodic quota refresh
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 5. Initialize tabs with shared state and services
	// Each tab receives the shared application state for consistent data access
	state := model.GetState()
	tabs := []app.Tab{
		accounts.New(state),            // Tab 0: Accounts - account list and quotas
		login.New(svcManager),          // Tab 1: Login - device-flow account onboarding
		history.New(state, svcManager), // Tab 2: History - recorded quota usage
	}
	model.SetTabs(tabs)

	// 6. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 7. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	// 8. Handle signals in a separate goroutine
	go func() {
		<-sigChan
		// Send quit message to the program
		p.Send(tea.Quit())
	}()

	// 9. Run the TUI program
	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Copilot Cockpit TUI - Multi-account GitHub Copilot quota manager

Usage:
  cct [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Accounts, Login, History)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  Enter           Switch to the selected account
  n               Add an account (device flow login)
  d               Delete the selected account
  t               Edit tags / toggle history range
  r               Refresh quota data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  STORAGE_ROOT            Account storage directory
  DATABASE_PATH           SQLite quota history database path
  COPILOT_CLIENT_ID       OAuth client id override for the device flow
  QUOTA_REFRESH_INTERVAL  Quota polling interval (default: 5m)
  COCKPIT_LOG_FILE        Append log output to this file

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/cockpit-tools/.env
  - ~/.cockpit-tools/.env

For more information, visit: https://github.com/cockpit-tools/copilot-cockpit-tui`)
}

package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	// Load upload configuration
	config, err := LoadConfig()
	if err != nil {
		fmt.Printf("Configuration error: %s\n", err)
		fmt.Println("\ns3drop uploads files into a fixed S3 bucket.")
		fmt.Println("Set the following environment variables:")
		fmt.Println("  BUCKET_NAME        bucket to upload into (required)")
		fmt.Println("  REGION             AWS region (default: us-east-1)")
		fmt.Println("  ACCESS_KEY_ID      static credentials (optional)")
		fmt.Println("  SECRET_ACCESS_KEY  static credentials (optional)")
		fmt.Println("\nAlternatively, create a .s3drop.cfg file in the current")
		fmt.Println("or home directory with a [default] section.")
		os.Exit(1)
	}

	// Create S3 client
	client, err := NewS3Client(config)
	if err != nil {
		fmt.Printf("Error creating S3 client: %s\n", err)
		os.Exit(1)
	}

	// Test bucket access
	ctx := context.Background()
	if err := client.HeadBucket(ctx); err != nil {
		fmt.Printf("Error accessing bucket '%s': %s\n", config.Bucket, err)
		fmt.Println("\nPlease check:")
		fmt.Println("  - Bucket name is correct")
		fmt.Println("  - Your credentials have access to this bucket")
		fmt.Println("  - The configured region matches the bucket")
		os.Exit(1)
	}

	// Initialize and run TUI
	model := NewModel(client, config)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running TUI: %s\n", err)
		os.Exit(1)
	}
}

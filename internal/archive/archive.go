package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveHistory moves the history database to an archive with timestamp,
// so the next translation starts a fresh history file
func ArchiveHistory(historyFile string) error {
	// Check if the history file exists
	if _, err := os.Stat(historyFile); os.IsNotExist(err) {
		return fmt.Errorf("history file does not exist: %s", historyFile)
	}

	// Get parent directory and create archive path
	parentDir := filepath.Dir(historyFile)
	archiveDir := filepath.Join(parentDir, "archive")

	// Create archive directory if it doesn't exist
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Generate timestamp
	timestamp := time.Now().Format("20060102-150405")
	archiveName := fmt.Sprintf("history-%s.db", timestamp)
	archivePath := filepath.Join(archiveDir, archiveName)

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archiveName = fmt.Sprintf("history-%s.db", timestamp)
		archivePath = filepath.Join(archiveDir, archiveName)
	}

	// Rename the history file into the archive
	if err := os.Rename(historyFile, archivePath); err != nil {
		return fmt.Errorf("failed to archive history file: %w", err)
	}

	fmt.Printf("Translation history archived to: %s\n", archivePath)
	return nil
}

package utils

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

const maxRetries = 3
const retryDelay = 2 * time.Minute

// CleanupExpiredFiles removes a generated export file once it is older than
// the TTL.
func CleanupExpiredFiles(filePath string, ttl time.Duration) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("error checking file: %v", err)
	}

	if time.Since(info.ModTime()) > ttl {
		if err := os.Remove(filePath); err != nil {
			return fmt.Errorf("error deleting expired file: %v", err)
		}
		log.Printf("File %s deleted successfully.", filePath)
	}
	return nil
}

// CleanupAllExpired removes stale generated exports from ./public/files.
func CleanupAllExpired(fileTTL time.Duration) error {
	files, err := os.ReadDir("./public/files")
	if err != nil {
		if os.IsNotExist(err) {
			return nil // nothing exported yet
		}
		return fmt.Errorf("error reading files directory: %v", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		filePath := fmt.Sprintf("./public/files/%s", file.Name())
		if err := CleanupExpiredFiles(filePath, fileTTL); err != nil {
			log.Println("Error cleaning up file:", err)
		}
	}
	return nil
}

// RunScheduledCleanup purges expired history exports daily at 1 AM, retrying
// on failure and emailing an operator when all retries fail.
func RunScheduledCleanup() {
	c := cron.New()

	c.AddFunc("0 1 * * *", func() {
		log.Println("running scheduled cleanup task...")

		var retries int
		var cleanupSuccess bool

		for retries < maxRetries {
			err := CleanupAllExpired(24 * time.Hour)
			if err == nil {
				cleanupSuccess = true
				break
			}
			log.Printf("cleanup failed: %v", err)
			retries++
			time.Sleep(retryDelay)
		}

		if !cleanupSuccess {
			log.Printf("cleanup task failed after %d retries. please check the system.", retries)
			SendEmail(
				os.Getenv("ADMIN_EMAIL"),
				"The scheduled cleanup task failed after multiple attempts.",
				"Cleanup Task Failed",
				"",
			)
		}
	})

	c.Start()

	// Keep the goroutine alive so cron jobs execute
	select {}
}

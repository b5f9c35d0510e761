package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"org-registry-backend/config"
	"org-registry-backend/db/models"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Initialize the SMTP mailer once and store it in a global variable
var mailer *gomail.Dialer

// emailLogDB, when set, records every sent email in the email_logs table.
var emailLogDB *gorm.DB

// SetEmailLogDB enables persistence of outbound email records.
func SetEmailLogDB(db *gorm.DB) {
	emailLogDB = db
}

// InitializeMailer sets up the mailer using environment variables
func InitializeMailer() {
	mailHost := os.Getenv("SMTP_HOST")
	mailPort := os.Getenv("SMTP_PORT")
	mailUser := os.Getenv("SMTP_USER")
	mailPassword := os.Getenv("SMTP_PASSWORD")

	port, err := strconv.Atoi(mailPort)
	if err != nil {
		config.Logger.Error("Invalid SMTP_PORT value, defaulting to port 25",
			zap.String("provided_port", mailPort),
			zap.Error(err),
		)
		port = 25 // Fallback to a default port if conversion fails
	}

	mailer = gomail.NewDialer(mailHost, port, mailUser, mailPassword)
	config.Logger.Info("Mailer initialized successfully")
}

// GetMailer returns the initialized mailer
func GetMailer() *gomail.Dialer {
	return mailer
}

// SendEmail sends a notification email with an optional attachment.
func SendEmail(email string, message string, title string, attachmentPath string) error {
	if mailer == nil {
		err := fmt.Errorf("mailer is not initialized")
		config.Logger.Error("Email send failed: mailer is not initialized",
			zap.String("to_email", email),
			zap.String("subject", title),
			zap.Error(err),
		)
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", email)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain", message)

	// Attach file if path is provided
	if attachmentPath != "" {
		if _, err := os.Stat(attachmentPath); err == nil {
			m.Attach(attachmentPath)
			config.Logger.Debug("Attaching file to email", zap.String("filepath", attachmentPath))
		} else {
			config.Logger.Warn("Attachment not found, sending without it",
				zap.String("filepath", attachmentPath))
		}
	}

	if err := mailer.DialAndSend(m); err != nil {
		config.Logger.Error("Failed to send email",
			zap.String("to_email", email),
			zap.String("subject", title),
			zap.Error(err),
		)
		return err
	}

	if emailLogDB != nil {
		entry := models.EmailLog{
			Recipient:      email,
			Subject:        title,
			Message:        message,
			SentAt:         time.Now(),
			AttachmentPath: attachmentPath,
		}
		if err := emailLogDB.Create(&entry).Error; err != nil {
			config.Logger.Warn("Failed to record sent email", zap.Error(err))
		}
	}

	return nil
}

package utils

import (
	"lms/config"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// SendCertificateWebhook notifies the HR system that a certificate was
// issued. Skips silently when no webhook URL is configured; delivery is
// best-effort and never blocks the completion flow.
func SendCertificateWebhook(userID, courseID uint, certificateID string, issuedDate time.Time) {
	url := config.AppConfig.HRWebhookURL
	if url == "" {
		return
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"event":          "certificate.issued",
			"user_id":        userID,
			"course_id":      courseID,
			"certificate_id": certificateID,
			"issued_date":    issuedDate.Format(time.RFC3339),
		}).
		Post(url)
	if err != nil {
		log.Printf("[HR-WEBHOOK] Error delivering certificate event: %v", err)
		return
	}
	if resp.StatusCode() >= 300 {
		log.Printf("[HR-WEBHOOK] Unexpected status %d delivering certificate event", resp.StatusCode())
	}
}

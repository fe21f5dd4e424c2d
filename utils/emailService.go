package utils

import (
	"fmt"
	"lms/config"
	"net/smtp"
	"strings"
	"time"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Compliance Training <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// HTML wrapper shared by every training notification
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1F3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F3A5F; line-height: 1.6; }
			.content h2 { color: #1F3A5F; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3E7BFA; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>COMPLIANCE TRAINING</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Compliance Training. All rights reserved.<br>
				This is an automated notification. Please do not reply.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// 1. Certificate issued on course completion
func SendCertificateEmail(email, name, courseTitle, certificateID string) {
	subject := "Your Training Certificate is Ready!"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have completed <strong>%s</strong>.</p>
		<div class="info-box">
			Certificate ID: <strong>%s</strong>
		</div>
		<p>Your certificate is valid for one year from today. You can view it any time under My Certificates.</p>
	`, name, courseTitle, certificateID)

	SendEmail([]string{email}, subject, getEmailTemplate("Course Completed", body))
}

// 2. Course assigned
func SendAssignmentEmail(email, name, courseTitle string, dueDate *time.Time) {
	dueStr := "no due date"
	if dueDate != nil {
		dueStr = dueDate.Format("January 2, 2006")
	}

	subject := "New Training Assigned: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have been assigned the course <strong>%s</strong>.</p>
		<div class="info-box">
			Due date: <strong>%s</strong>
		</div>
		<p>Please log in and complete your training before the due date.</p>
	`, name, courseTitle, dueStr)

	SendEmail([]string{email}, subject, getEmailTemplate("New Course Assignment", body))
}

// 3. Assignment went overdue
func SendOverdueEmail(email, name, courseTitle string, dueDate *time.Time) {
	dueStr := ""
	if dueDate != nil {
		dueStr = dueDate.Format("January 2, 2006")
	}

	subject := "Training Overdue: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your assigned course <strong>%s</strong> was due on <strong>%s</strong> and is now overdue.</p>
		<p>Please complete it as soon as possible. Your manager has been notified.</p>
	`, name, courseTitle, dueStr)

	SendEmail([]string{email}, subject, getEmailTemplate("Overdue Training", body))
}

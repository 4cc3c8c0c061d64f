package utils

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rentreward/rentreward/config"
)

// SendMail sends an email using SMTP settings from config.
func SendMail(to, subject, contentType, body string) error {
	cfg := config.Get()
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort))
	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)

	fromName := cfg.SMTPFromName
	if fromName == "" {
		fromName = "RentReward"
	}
	fromHeader := fmt.Sprintf("%s <%s>", encodeRFC2047(fromName), cfg.SMTPFrom)

	headers := map[string]string{
		"From":         fromHeader,
		"To":           to,
		"Subject":      encodeRFC2047(subject),
		"MIME-Version": "1.0",
		"Content-Type": contentType + "; charset=UTF-8",
	}
	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if cfg.SMTPTLS {
		// STARTTLS with timeouts
		d := net.Dialer{Timeout: 5 * time.Second}
		conn, err := d.Dial("tcp", addr)
		if err != nil {
			return err
		}
		_ = conn.SetDeadline(time.Now().Add(15 * time.Second))
		host, _, _ := net.SplitHostPort(addr)
		c, err := smtp.NewClient(conn, host)
		if err != nil {
			_ = conn.Close()
			return err
		}
		defer c.Close()
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if cfg.SMTPUsername != "" {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
		if err := c.Mail(cfg.SMTPFrom); err != nil {
			return err
		}
		if err := c.Rcpt(to); err != nil {
			return err
		}
		wc, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := wc.Write([]byte(msg.String())); err != nil {
			_ = wc.Close()
			return err
		}
		return wc.Close()
	}

	// Plain SMTP without TLS (not recommended)
	return smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{to}, []byte(msg.String()))
}

// SendVerificationEmail delivers the account verification link for a fresh token.
func SendVerificationEmail(to, token string) error {
	cfg := config.Get()
	verificationURL := fmt.Sprintf("%s/verify-email/%s", strings.TrimRight(cfg.FrontendURL, "/"), token)

	body := fmt.Sprintf(`<div style="max-width:600px;margin:0 auto;padding:20px;font-family:Arial,sans-serif">
<h2 style="color:#333;text-align:center">Welcome to RentReward!</h2>
<p style="color:#666;font-size:16px">Thank you for signing up. Please verify your email address by clicking the link below:</p>
<p style="text-align:center;margin:30px 0"><a href="%s" style="background-color:#4F46E5;color:white;padding:12px 24px;text-decoration:none;border-radius:5px;font-weight:bold">Verify Email</a></p>
<p style="color:#666;font-size:14px">If the button doesn't work, copy and paste this link into your browser:<br><a href="%s" style="color:#4F46E5">%s</a></p>
<p style="color:#999;font-size:12px;margin-top:30px;text-align:center">This link will expire in 24 hours. If you didn't create an account with RentReward, please ignore this email.</p>
</div>`, verificationURL, verificationURL, verificationURL)

	return SendMail(to, "Verify Your Email - RentReward", "text/html", body)
}

// encodeRFC2047 encodes a string for non-ASCII mail headers
func encodeRFC2047(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(s)))
		}
	}
	return s
}

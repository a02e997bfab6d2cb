package utils

import (
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

// SendResetCodeEmail sends the password reset code to the user's email address
func SendResetCodeEmail(email string, code string) {
	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_SENDER"))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your password reset code")
	m.SetBody("text/plain", "Your verification code is: "+code+". It expires in 15 minutes.")

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		465,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
	)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send reset code email to %s: %v", email, err)
		return
	}

	log.Printf("Reset code email sent to %s", email)
}

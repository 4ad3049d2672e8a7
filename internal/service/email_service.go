package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends the transactional emails
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that logs and skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{debug: debug, appBaseURL: appBaseURL}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service: region=%s, from=%s, base=%s", awsRegion, fromEmail, appBaseURL)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail greets a newly registered parent
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	link := s.appBaseURL + "/sign-in"
	htmlBody := renderEmail("Welcome to ResearchNest!", fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your family account is ready. Here's what you can do next:</p>
			<ul>
				<li>Add your children and give them their own logins</li>
				<li>Create research projects and pick a cover</li>
				<li>Follow progress from the parent dashboard</li>
			</ul>
			<p style="text-align: center;"><a href="%s" class="button">Get Started</a></p>`,
		html.EscapeString(toName), link))

	textBody := fmt.Sprintf(`Hi %s,

Your family account is ready. Here's what you can do next:
- Add your children and give them their own logins
- Create research projects and pick a cover
- Follow progress from the parent dashboard

Get started: %s
%s`, toName, link, textFooter)

	return s.sendEmail(ctx, toEmail, "Welcome to ResearchNest!", htmlBody, textBody)
}

// SendPasswordResetEmail sends a one-hour reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): password reset to %s", toEmail)
		return nil
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, resetToken)
	if s.debug {
		log.Printf("[DEBUG] Reset link generated for %s", toEmail)
	}

	htmlBody := renderEmail("Password Reset Request", fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>We received a request to reset the password on your ResearchNest account.</p>
			<p style="text-align: center;"><a href="%s" class="button">Reset Password</a></p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
			<p><strong>This link will expire in 1 hour.</strong></p>
			<p>If you didn't request a password reset, you can safely ignore this email.</p>`,
		html.EscapeString(toName), link, link))

	textBody := fmt.Sprintf(`Hi %s,

We received a request to reset the password on your ResearchNest account.

Reset it here:
%s

This link will expire in 1 hour.

If you didn't request a password reset, you can safely ignore this email.
%s`, toName, link, textFooter)

	return s.sendEmail(ctx, toEmail, "Reset Your ResearchNest Password", htmlBody, textBody)
}

const textFooter = `
---
This is an automated email from ResearchNest. Please do not reply.
`

func renderEmail(heading, content string) string {
	return `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f59e0b; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fffbeb; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #f59e0b; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>` + html.EscapeString(heading) + `</h1></div>
		<div class="content">` + content + `
		</div>
		<div class="footer"><p>This is an automated email from ResearchNest. Please do not reply.</p></div>
	</div>
</body>
</html>
`
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}

package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"quoteflow/config"
	"quoteflow/models"
)

type EmailData struct {
	Subject   string
	To        []string
	CC        []string
	BCC       []string
	Template  string
	Data      interface{}
	FromName  string
	FromEmail string
}

// ServiceEmailConfig holds the per-service-line copy for confirmation emails
type ServiceEmailConfig struct {
	Subject     string
	AccentColor string
	Benefits    []string
	NextSteps   []string
}

var serviceEmailConfigs = map[models.ServiceContext]ServiceEmailConfig{
	models.ServiceSmartAssistant: {
		Subject:     "Your Smart Assistant quotation request",
		AccentColor: "#3498db",
		Benefits: []string{
			"A conversational assistant trained on your own knowledge base",
			"Deflects repetitive support questions around the clock",
			"Hands off to your team with full conversation context",
		},
		NextSteps: []string{
			"Our team reviews your requirements within one business day",
			"We prepare a tailored proposal and pricing",
			"We schedule your consultation in your preferred format",
		},
	},
	models.ServiceKnowledgeRetrieval: {
		Subject:     "Your Knowledge Retrieval quotation request",
		AccentColor: "#27ae60",
		Benefits: []string{
			"Search across every document, wiki, and data silo at once",
			"Answers cite their sources so your team can verify them",
			"Connects to the storage systems you already use",
		},
		NextSteps: []string{
			"Our team reviews your data sources within one business day",
			"We map an integration plan and prepare pricing",
			"We schedule your consultation in your preferred format",
		},
	},
	models.ServiceWorkflowAutomation: {
		Subject:     "Your Workflow Automation quotation request",
		AccentColor: "#e67e22",
		Benefits: []string{
			"Automates the manual handoffs that slow your team down",
			"Keeps a human in the loop wherever you need sign-off",
			"Integrates with your existing tools instead of replacing them",
		},
		NextSteps: []string{
			"Our team reviews your workflows within one business day",
			"We prepare an automation roadmap and pricing",
			"We schedule your consultation in your preferred format",
		},
	},
	models.ServiceAIConsulting: {
		Subject:     "Your AI Consulting quotation request",
		AccentColor: "#8e44ad",
		Benefits: []string{
			"A clear-eyed assessment of where AI actually pays off for you",
			"A prioritized roadmap grounded in your data and constraints",
			"Senior engineers, not slide decks",
		},
		NextSteps: []string{
			"Our team reviews your goals within one business day",
			"We prepare an engagement outline and pricing",
			"We schedule your consultation in your preferred format",
		},
	},
}

// Embedded email templates
var emailTemplates = map[string]string{
	"confirmation": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: {{.AccentColor}}; border-bottom: 2px solid {{.AccentColor}}; padding-bottom: 10px; }
        .reference { font-size: 20px; font-weight: bold; color: {{.AccentColor}}; margin: 20px 0; text-align: center; }
        .content { margin: 20px 0; }
        ul { padding-left: 20px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>We received your request</h2>
    </div>

    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>Thanks for requesting a quotation for <strong>{{.ServiceName}}</strong>{{if .Company}} at {{.Company}}{{end}}. Your reference number is:</p>

        <div class="reference">{{.ReferenceNumber}}</div>

        <p>What you get:</p>
        <ul>{{range .Benefits}}<li>{{.}}</li>{{end}}</ul>

        <p>What happens next:</p>
        <ul>{{range .NextSteps}}<li>{{.}}</li>{{end}}</ul>
    </div>

    <div class="footer">
        <p>Keep your reference number handy when contacting us.</p>
        <p>© {{.Year}} QuoteFlow. All rights reserved.</p>
    </div>
</body>
</html>`,

	"sales_notification": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 700px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        table { border-collapse: collapse; width: 100%; margin: 15px 0; }
        th { text-align: left; background: #f5f6fa; padding: 8px; width: 35%; }
        td { padding: 8px; border-bottom: 1px solid #eee; }
        .section { margin-top: 25px; color: #2c3e50; }
    </style>
</head>
<body>
    <div class="header">
        <h2>New quotation request {{.ReferenceNumber}}</h2>
    </div>

    <h3 class="section">Contact</h3>
    <table>
        <tr><th>Name</th><td>{{.ContactName}}</td></tr>
        <tr><th>Email</th><td>{{.ContactEmail}}</td></tr>
        <tr><th>Phone</th><td>{{.ContactPhone}}</td></tr>
    </table>

    <h3 class="section">Business</h3>
    <table>
        <tr><th>Company</th><td>{{.CompanyName}}</td></tr>
        <tr><th>Industry</th><td>{{.Industry}}</td></tr>
        <tr><th>Company size</th><td>{{.CompanySize}}</td></tr>
        <tr><th>Website</th><td>{{.Website}}</td></tr>
    </table>

    <h3 class="section">Project</h3>
    <table>
        <tr><th>Service</th><td>{{.ServiceName}} ({{.ServiceContext}})</td></tr>
        <tr><th>Package</th><td>{{.PackageName}}</td></tr>
        <tr><th>Objectives</th><td>{{range .Objectives}}{{.}}<br>{{end}}</td></tr>
        <tr><th>Use cases</th><td>{{range .UseCases}}{{.}}<br>{{end}}</td></tr>
        <tr><th>Integrations</th><td>{{range .Integrations}}{{.}}<br>{{end}}</td></tr>
        <tr><th>Data sources</th><td>{{range .DataSources}}{{.}}<br>{{end}}</td></tr>
        <tr><th>Message</th><td>{{.Message}}</td></tr>
    </table>

    <h3 class="section">Timeline &amp; budget</h3>
    <table>
        <tr><th>Timeline</th><td>{{.Timeline}}</td></tr>
        <tr><th>Budget</th><td>{{.Budget}}</td></tr>
        <tr><th>Consultation</th><td>{{.ConsultationPreference}}</td></tr>
    </table>
    {{if .ROISnapshot}}
    <h3 class="section">ROI snapshot</h3>
    <table>
        {{range $k, $v := .ROISnapshot}}<tr><th>{{$k}}</th><td>{{$v}}</td></tr>{{end}}
    </table>
    {{end}}
</body>
</html>`,
}

func SendEmail(data EmailData) error {
	smtp := config.AppConfig.SMTP

	// Set default from identity if not provided
	if data.FromEmail == "" {
		data.FromEmail = smtp.FromEmail
	}
	if data.FromName == "" {
		data.FromName = smtp.FromName
	}

	// Get template from embedded templates
	tmplContent, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("template '%s' not found", data.Template)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("error parsing template: %v", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return fmt.Errorf("error executing template: %v", err)
	}

	_, err = SendRawEmail(data.To, data.CC, data.BCC, data.Subject, body.String(),
		fmt.Sprintf("%s <%s>", data.FromName, data.FromEmail))
	return err
}

// SendRawEmail delivers an already-rendered HTML body via SMTP and returns
// the generated Message-ID after DialAndSend completes. A plain-text
// alternative is attached for clients that reject HTML.
func SendRawEmail(to, cc, bcc []string, subject, htmlBody, from string) (string, error) {
	smtp := config.AppConfig.SMTP
	if smtp.Host == "" {
		return "", fmt.Errorf("SMTP not configured")
	}

	messageID := fmt.Sprintf("<%s@quoteflow>", uuid.NewString())

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to...)
	if len(cc) > 0 {
		m.SetHeader("Cc", cc...)
	}
	if len(bcc) > 0 {
		m.SetHeader("Bcc", bcc...)
	}
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", stripTagsForText(htmlBody))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		return "", fmt.Errorf("error sending email: %v", err)
	}
	return messageID, nil
}

// SendQuotationConfirmation sends the per-service confirmation email to the
// submitter.
func SendQuotationConfirmation(q *models.QuotationRequest) error {
	cfg, ok := serviceEmailConfigs[q.ServiceContext]
	if !ok {
		return fmt.Errorf("no email config for service context '%s'", q.ServiceContext)
	}

	return SendEmail(EmailData{
		Subject:  cfg.Subject,
		To:       []string{q.ContactEmail},
		Template: "confirmation",
		Data: map[string]interface{}{
			"Subject":         cfg.Subject,
			"AccentColor":     template.CSS(cfg.AccentColor),
			"Name":            q.ContactName,
			"Company":         q.CompanyName,
			"ServiceName":     q.ServiceName,
			"ReferenceNumber": q.ReferenceNumber,
			"Benefits":        cfg.Benefits,
			"NextSteps":       cfg.NextSteps,
			"Year":            time.Now().Year(),
		},
	})
}

// SendSalesNotification renders the full submission summary for the internal
// sales address.
func SendSalesNotification(q *models.QuotationRequest) error {
	subject := fmt.Sprintf("New quotation request %s from %s", q.ReferenceNumber, q.CompanyName)
	return SendEmail(EmailData{
		Subject:  subject,
		To:       []string{config.AppConfig.SalesNotifyEmail},
		Template: "sales_notification",
		Data: map[string]interface{}{
			"Subject":                subject,
			"ReferenceNumber":        q.ReferenceNumber,
			"ContactName":            q.ContactName,
			"ContactEmail":           q.ContactEmail,
			"ContactPhone":           q.ContactPhone,
			"CompanyName":            q.CompanyName,
			"Industry":               q.Industry,
			"CompanySize":            q.CompanySize,
			"Website":                q.Website,
			"ServiceName":            q.ServiceName,
			"ServiceContext":         q.ServiceContext,
			"PackageName":            q.PackageName,
			"Objectives":             q.Objectives,
			"UseCases":               q.UseCases,
			"Integrations":           q.Integrations,
			"DataSources":            q.DataSources,
			"Message":                q.Message,
			"Timeline":               q.Timeline,
			"Budget":                 q.Budget,
			"ConsultationPreference": q.ConsultationPreference,
			"ROISnapshot":            q.ROISnapshot,
		},
	})
}

// RenderStepBody renders a sequence step's body template with contact data.
func RenderStepBody(step *models.SequenceStep, contact *models.Contact) (string, error) {
	tmpl, err := template.New("step").Parse(step.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing step template: %v", err)
	}

	var body bytes.Buffer
	err = tmpl.Execute(&body, map[string]interface{}{
		"Name":    contact.Name,
		"Company": contact.Company,
		"Email":   contact.Email,
	})
	if err != nil {
		return "", fmt.Errorf("error executing step template: %v", err)
	}
	return body.String(), nil
}

// stripTagsForText produces a crude plain-text alternative from HTML
func stripTagsForText(html string) string {
	var b bytes.Buffer
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/wagginmeals/backend/internal/domain/integration"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

// subjects are rendered as plain text so ampersands and quotes stay intact
var subjects = map[integration.EmailType]string{
	integration.EmailOrderConfirmation:          "Order Confirmation #{{.OrderNumber}} - Waggin Meals",
	integration.EmailOrderProcessing:            "We're preparing order #{{.OrderNumber}}",
	integration.EmailOrderShipped:               "Your Order #{{.OrderNumber}} Has Shipped!",
	integration.EmailOrderOutForDelivery:        "Order #{{.OrderNumber}} is out for delivery",
	integration.EmailOrderDelivered:             "Order #{{.OrderNumber}} has been delivered",
	integration.EmailSubscriptionCreated:        "Welcome to your Waggin Meals subscription",
	integration.EmailSubscriptionPaymentSuccess: "Receipt for your Waggin Meals subscription{{if .InvoiceNumber}} - {{.InvoiceNumber}}{{end}}",
	integration.EmailSubscriptionPaymentFailed:  "Action Required: Update your payment method",
	integration.EmailConsultationReceived:       "Consultation Payment Confirmed | Waggin Meals",
}

// Casers are stateful, so each call gets its own
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"title": func(v any) string {
			if v == nil {
				return ""
			}
			s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
			return cases.Title(language.English).String(s)
		},
	}
}

type emailTemplate struct {
	subject *texttemplate.Template
	body    *template.Template
}

// Renderer turns an email type and data into a subject and HTML body
type Renderer struct {
	templates map[integration.EmailType]*emailTemplate
	siteURL   string
}

// NewRenderer parses every template up front
func NewRenderer(siteURL string) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[integration.EmailType]*emailTemplate, len(subjects)),
		siteURL:   strings.TrimRight(siteURL, "/"),
	}
	for t, subject := range subjects {
		subj, err := texttemplate.New(string(t) + "_subject").Parse(subject)
		if err != nil {
			return nil, fmt.Errorf("parse subject %s: %w", t, err)
		}
		body, err := template.New(string(t)).Funcs(templateFuncs()).ParseFS(templateFS,
			"templates/layout.html",
			"templates/items.html",
			"templates/"+string(t)+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", t, err)
		}
		r.templates[t] = &emailTemplate{subject: subj, body: body}
	}
	return r, nil
}

// Render returns the subject and HTML body for e
func (r *Renderer) Render(e integration.Email) (string, string, error) {
	tpl, ok := r.templates[e.Type]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", integration.ErrUnknownEmailType, e.Type)
	}
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	if _, ok := data["SiteURL"]; !ok {
		data["SiteURL"] = r.siteURL
	}

	var subject bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render subject %s: %w", e.Type, err)
	}
	var body bytes.Buffer
	if err := tpl.body.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", "", fmt.Errorf("render body %s: %w", e.Type, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}

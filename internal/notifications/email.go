package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"campuspaws/internal/database"
)

// Email is a rendered message with both bodies. Clients that cannot show
// HTML fall back to the text body; the two always carry the same facts.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

// EmailParams carries the fields the templates reference. Only the ones
// relevant to the kind need to be set.
type EmailParams struct {
	RecipientName string
	TaskTitle     string
	TaskPriority  database.Priority
	ScheduledDate time.Time
	AnimalName    string
	RecordType    database.MedicalRecordType
	Description   string
	FollowUpDate  time.Time
	ActionURL     string
	DigestItems   []DigestItem
}

// DigestItem is one line of the daily digest.
type DigestItem struct {
	Title   string
	Summary string
}

const baseHTML = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
<div style="max-width: 600px; margin: 0 auto;">
<h2 style="color: #2c7a4b;">Campus Paws</h2>
{{block "body" .}}{{end}}
{{if .ActionURL}}<p><a href="{{.ActionURL}}" style="background: #2c7a4b; color: #fff; padding: 10px 18px; border-radius: 4px; text-decoration: none;">View details</a></p>{{end}}
<p style="color: #888; font-size: 12px;">You can change what we email you in your notification preferences.</p>
</div>
</body>
</html>`

var htmlTemplates = map[database.NotificationType]*htmltemplate.Template{
	database.NotificationTypeTaskAssigned: mustHTML(`{{define "body"}}
<p>Hi {{.RecipientName}},</p>
<p>You have been assigned a new task: <strong>{{.TaskTitle}}</strong> ({{.TaskPriority}} priority), scheduled for {{.ScheduledDate.Format "Mon, 02 Jan 2006"}}.</p>
{{end}}`),
	database.NotificationTypeTaskReminder: mustHTML(`{{define "body"}}
<p>Hi {{.RecipientName}},</p>
<p>Reminder: the task <strong>{{.TaskTitle}}</strong> is due on {{.ScheduledDate.Format "Mon, 02 Jan 2006"}}.</p>
{{end}}`),
	database.NotificationTypeMedicalAlert: mustHTML(`{{define "body"}}
<p>Hi {{.RecipientName}},</p>
<p>A <strong>{{.RecordType}}</strong> record was filed for <strong>{{.AnimalName}}</strong>.</p>
<p>{{.Description}}</p>
{{end}}`),
	database.NotificationTypeMedicalFollowup: mustHTML(`{{define "body"}}
<p>Hi {{.RecipientName}},</p>
<p><strong>{{.AnimalName}}</strong> needs a follow-up visit by {{.FollowUpDate.Format "Mon, 02 Jan 2006"}}.</p>
{{end}}`),
	database.NotificationTypeSystem: mustHTML(`{{define "body"}}
<p>Hi {{.RecipientName}},</p>
<p>Here is what happened around campus today:</p>
<ul>
{{range .DigestItems}}<li><strong>{{.Title}}</strong>: {{.Summary}}</li>
{{end}}</ul>
{{end}}`),
}

var textTemplates = map[database.NotificationType]*texttemplate.Template{
	database.NotificationTypeTaskAssigned: mustText(`Hi {{.RecipientName}},

You have been assigned a new task: {{.TaskTitle}} ({{.TaskPriority}} priority), scheduled for {{.ScheduledDate.Format "Mon, 02 Jan 2006"}}.
{{if .ActionURL}}
View details: {{.ActionURL}}
{{end}}`),
	database.NotificationTypeTaskReminder: mustText(`Hi {{.RecipientName}},

Reminder: the task {{.TaskTitle}} is due on {{.ScheduledDate.Format "Mon, 02 Jan 2006"}}.
{{if .ActionURL}}
View details: {{.ActionURL}}
{{end}}`),
	database.NotificationTypeMedicalAlert: mustText(`Hi {{.RecipientName}},

A {{.RecordType}} record was filed for {{.AnimalName}}.

{{.Description}}
{{if .ActionURL}}
View details: {{.ActionURL}}
{{end}}`),
	database.NotificationTypeMedicalFollowup: mustText(`Hi {{.RecipientName}},

{{.AnimalName}} needs a follow-up visit by {{.FollowUpDate.Format "Mon, 02 Jan 2006"}}.
{{if .ActionURL}}
View details: {{.ActionURL}}
{{end}}`),
	database.NotificationTypeSystem: mustText(`Hi {{.RecipientName}},

Here is what happened around campus today:
{{range .DigestItems}}
- {{.Title}}: {{.Summary}}{{end}}
`),
}

func mustHTML(body string) *htmltemplate.Template {
	return htmltemplate.Must(htmltemplate.Must(htmltemplate.New("email").Parse(baseHTML)).Parse(body))
}

func mustText(body string) *texttemplate.Template {
	return texttemplate.Must(texttemplate.New("email").Parse(body))
}

func subjectFor(kind database.NotificationType, params EmailParams) string {
	switch kind {
	case database.NotificationTypeTaskAssigned:
		return fmt.Sprintf("New task: %s", params.TaskTitle)
	case database.NotificationTypeTaskReminder:
		return fmt.Sprintf("Reminder: %s", params.TaskTitle)
	case database.NotificationTypeMedicalAlert:
		return fmt.Sprintf("Medical alert for %s", params.AnimalName)
	case database.NotificationTypeMedicalFollowup:
		return fmt.Sprintf("Follow-up due for %s", params.AnimalName)
	case database.NotificationTypeSystem:
		return "Your Campus Paws daily digest"
	default:
		return "Campus Paws notification"
	}
}

// RenderEmail produces subject, HTML body, and text body for the kind.
// Unknown kinds are an error rather than a blank email.
func RenderEmail(kind database.NotificationType, params EmailParams) (Email, error) {
	htmlTmpl, ok := htmlTemplates[kind]
	if !ok {
		return Email{}, fmt.Errorf("notifications: no email template for kind %q", kind)
	}
	textTmpl := textTemplates[kind]

	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, params); err != nil {
		return Email{}, fmt.Errorf("notifications: failed to render html email (kind=%s): %w", kind, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, params); err != nil {
		return Email{}, fmt.Errorf("notifications: failed to render text email (kind=%s): %w", kind, err)
	}

	return Email{
		Subject: subjectFor(kind, params),
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
	}, nil
}

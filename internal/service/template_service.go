// internal/service/template_service.go
package service

import (
	"strings"
)

// RenderTemplate substitutes {key} placeholders with values from data.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// ComposeOutreachBody renders the campaign body for one recipient and wraps
// it in the salutation and signature every outreach email carries.
func ComposeOutreachBody(body, recipientName, advocateName string) string {
	if strings.TrimSpace(recipientName) == "" {
		recipientName = "Representative"
	}
	rendered := RenderTemplate(body, map[string]string{
		"recipient_name": recipientName,
		"advocate_name":  advocateName,
	})
	return "Dear " + recipientName + ",\n\n" + rendered + "\n\nSincerely,\n" + advocateName
}

package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`<p>Hi {{.Name}},</p><p>You have been added to the attendance roster.</p>`))
	absenceTmpl = template.Must(template.New("absence").Parse(
		`<p>Hi {{.Name}},</p><p>You were marked absent for the session on {{.Date}}.</p>`))
)

// WelcomeNotice builds the message sent when a participant with an email is added.
func WelcomeNotice(name, to string) (SendRequest, error) {
	body, err := render(welcomeTmpl, map[string]string{"Name": name})
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{to},
		Subject: "Welcome to the attendance roster",
		HTML:    body,
	}, nil
}

// AbsenceNotice builds the message sent to a participant marked Absent.
func AbsenceNotice(name, to, sessionDate string) (SendRequest, error) {
	body, err := render(absenceTmpl, map[string]string{"Name": name, "Date": sessionDate})
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{to},
		Subject: fmt.Sprintf("Marked absent for %s", sessionDate),
		HTML:    body,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s notice: %w", t.Name(), err)
	}
	return buf.String(), nil
}

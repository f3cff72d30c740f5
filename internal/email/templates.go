package email

import (
	"bytes"
	"html/template"
)

var urgentEscalationTemplate = template.Must(template.New("urgent_escalation").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2933;">
  <h2>Escalación urgente</h2>
  <p>Un cliente necesita atención humana inmediata.</p>
  <table cellpadding="4">
    <tr><td><strong>Escalación</strong></td><td>{{.EscalationID}}</td></tr>
    <tr><td><strong>Conversación</strong></td><td>{{.ConversationID}}</td></tr>
    <tr><td><strong>Teléfono</strong></td><td>{{.CustomerPhone}}</td></tr>
    <tr><td><strong>Prioridad</strong></td><td>{{.Priority}}</td></tr>
    <tr><td><strong>Motivo</strong></td><td>{{.Reason}}</td></tr>
  </table>
  <p>Reclame el ticket desde el panel de agentes.</p>
</body>
</html>
`))

func renderEmailTemplate(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

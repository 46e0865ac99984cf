package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const resetCodeSubject = "🔐 Código de recuperación - Kipus A+"

var resetCodeTmpl = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h2 style="color: #2E7D32; margin: 0;">Kipus A+</h2>
    <p style="color: #666; margin: 5px 0;">Vivienda Sustentable - Universidad de Talca</p>
  </div>
  <h3 style="color: #333;">Recuperación de Contraseña</h3>
  <p>Hola <strong>{{.Name}}</strong>,</p>
  <p>Has solicitado restablecer tu contraseña en Kipus A+. Usa el siguiente código para continuar:</p>
  <div style="background: #2E7D32; padding: 25px; text-align: center; margin: 30px 0; border-radius: 10px; color: white;">
    <div style="font-size: 14px; margin-bottom: 10px;">TU CÓDIGO DE VERIFICACIÓN</div>
    <h1 style="color: white; margin: 0; font-size: 42px; letter-spacing: 10px;">{{.Code}}</h1>
    <div style="font-size: 12px; margin-top: 10px;">Válido por {{.Minutes}} minutos</div>
  </div>
  <p style="color: #666; font-size: 14px;">
    1. Regresa a la página de recuperación de contraseña<br>
    2. Ingresa el código de 6 dígitos mostrado arriba<br>
    3. Crea tu nueva contraseña
  </p>
  <p style="color: #666; font-size: 12px;">Si no solicitaste este cambio, puedes ignorar este mensaje. Tu cuenta permanecerá segura.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <div style="text-align: center; color: #999; font-size: 12px;">
    <p>Equipo Kipus A+ Vivienda Sustentable<br>Universidad de Talca</p>
    <p>Este es un email automático, por favor no respondas a este mensaje.</p>
  </div>
</div>`))

// ResetCodeMessage renders the password-reset email. name is user supplied
// and is HTML-escaped.
func ResetCodeMessage(name, code string, validFor time.Duration) (subject, body string, err error) {
	var buf bytes.Buffer
	err = resetCodeTmpl.Execute(&buf, struct {
		Name    string
		Code    string
		Minutes int
	}{name, code, int(validFor.Minutes())})
	if err != nil {
		return "", "", fmt.Errorf("render reset email: %w", err)
	}
	return resetCodeSubject, buf.String(), nil
}

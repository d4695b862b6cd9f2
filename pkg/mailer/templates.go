package mailer

import "fmt"

// VerificationEmail builds the onboarding email holding the email
// verification link.
func VerificationEmail(to, clientName, verifyURL string) Message {
	return Message{
		To:      to,
		Subject: "Confirma tu correo",
		HTMLBody: fmt.Sprintf(
			"<p>Hola %s,</p><p>Para continuar con tu registro confirma tu correo:</p>"+
				"<p><a href=%q>Confirmar correo</a></p>"+
				"<p>El enlace vence en 24 horas.</p>",
			clientName, verifyURL),
	}
}

// ContractEmail builds the sale confirmation email with the contract PDF
// attached.
func ContractEmail(to, clientName, contractNumber, pdfPath string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Contrato de venta %s", contractNumber),
		HTMLBody: fmt.Sprintf(
			"<p>Hola %s,</p><p>Adjuntamos el contrato de venta <strong>%s</strong>.</p>",
			clientName, contractNumber),
		Attachments: []string{pdfPath},
	}
}

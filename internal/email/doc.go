// Package email arma y entrega mensajes por SMTP (go-mail).
//
//	┌──────────────────────────────────────────┐
//	│  services/auth (OTP)  services/email     │
//	└───────────────────┬──────────────────────┘
//	                    │ Sender.Send(ctx, Message)
//	                    ▼
//	┌──────────────────────────────────────────┐
//	│  SMTPSender                              │
//	│  compose → Dial → Auth → Send → Close    │
//	└──────────────────────────────────────────┘
//
// Cada envío abre y cierra su propia conexión; no hay pool ni reintentos.
// DiagnoseSMTP clasifica los errores para logs y métricas.
package email

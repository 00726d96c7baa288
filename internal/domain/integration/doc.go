// Package integration declares the ports to third-party services the back
// office talks to: the CRM, the mailer, object storage and the PDF renderer.
// Adapters live under internal/infrastructure.
package integration

// Package delivery emails finished mashups to the requester over SMTP.
package delivery

// Package pipeline drives one mashup run end to end: validate the request,
// search the catalog, fetch audio, assemble the composite, package it, and
// hand it to delivery. The Driver is the only component that talks to every
// collaborator; each stage receives a narrow interface so tests can replace
// any of them.
//
// Every run gets its own working directory beneath the configured work root,
// removed when Run returns regardless of outcome.
package pipeline

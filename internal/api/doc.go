// Package api exposes the account, competition and community services over
// HTTP. Handlers decode and validate JSON bodies, call one service method and
// translate its sentinel errors into status codes and client-safe messages.
package api

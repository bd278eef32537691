// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game room handler.
// Auth and seat checks fail with plain HTTP statuses before the upgrade.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
)

// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used within the lobby handlers. These provide
// more specific reasons for closure than standard codes.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Provided session token was invalid or expired.
	WrongLobbyError       = 3002 // Session token was issued for a different lobby.
	InvalidLobbyIDError   = 3003 // Target lobby ID specified in the WS URL does not exist or is invalid.
)

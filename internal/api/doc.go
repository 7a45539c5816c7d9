// Package api provides the HTTP REST API and WebSocket server for
// tabletop-core.
//
// It exposes authentication, scene and layer management, dice rolling,
// journals, and the token library over REST, and relays scene mutations
// to connected clients in real time over WebSocket.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

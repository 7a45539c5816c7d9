// Package scene implements the scene store and visibility rules for
// tabletop-core.
//
// A scene is a named canvas owning an ordered stack of layers; layers own
// tokens, drawings, and text elements. At most one scene is active at a
// time; activation atomically clears the flag everywhere else. Creating
// a scene also creates its three default layers (background, player,
// foreground) in a single transaction.
//
// Visibility is a pure function of the requester's role and the scene:
// players see only the active scene, and only player-type layers with
// their contents; every other layer comes back with metadata and empty
// child collections. It is evaluated on every read path, never cached.
package scene

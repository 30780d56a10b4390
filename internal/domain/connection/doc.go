// Package connection contains the Connection bounded context.
// It models the link between this store and the Shipkia platform.
//
// Key concepts:
//   - Connection: the persisted token set and remote identity of the store
//   - Platform: port interface for the remote Shipkia endpoints
//   - OptionStore / TransientStore: ports for the flat key-value settings
//     and the short-lived flags that pace auto-connect attempts
//   - TrackingSettings: the display settings pushed to Shipkia
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package connection

// Package tracking contains the shipment tracking metadata attached to store orders.
// Values are written by the Shipkia platform and only read by the store.
package tracking

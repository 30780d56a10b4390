package tracking

import (
	"errors"
	"strings"
)

// Order meta keys
const (
	MetaAWBNumber      = "shipkia_awb_number"
	MetaCourierPartner = "shipkia_courier_partner"
	MetaDeliveryStatus = "shipkia_delivery_status"
	MetaTrackingURL    = "shipkia_tracking_url"
	MetaShipkiaOrderID = "shipkia_order_id"
)

// Tracking report paging
const (
	// DefaultPageSize is the number of orders per tracking report page
	DefaultPageSize = 20
	// MaxPageSize bounds the orders of one page
	MaxPageSize = 100
	// MaxPage is the last page a report request may ask for
	MaxPage = 100000
)

var (
	// ErrInvalidOrderID is returned for non-positive order ids
	ErrInvalidOrderID = errors.New("tracking: invalid order id")

	// ErrEmptyUpdate is returned when a tracking update sets no field
	ErrEmptyUpdate = errors.New("tracking: update carries no tracking field")
)

// MetaKeys lists every order meta key owned by this package
func MetaKeys() []string {
	return []string{MetaAWBNumber, MetaCourierPartner, MetaDeliveryStatus, MetaTrackingURL, MetaShipkiaOrderID}
}

// OrderTracking is the tracking metadata of one order
type OrderTracking struct {
	OrderID        int64  `json:"order_id"`
	AWBNumber      string `json:"awb_number"`
	CourierPartner string `json:"courier_partner"`
	DeliveryStatus string `json:"delivery_status"`
	TrackingURL    string `json:"tracking_url"`
	ShipkiaOrderID string `json:"shipkia_order_id"`
}

// FromMeta builds the tracking of orderID from its meta values
func FromMeta(orderID int64, meta map[string]string) OrderTracking {
	return OrderTracking{
		OrderID:        orderID,
		AWBNumber:      meta[MetaAWBNumber],
		CourierPartner: meta[MetaCourierPartner],
		DeliveryStatus: meta[MetaDeliveryStatus],
		TrackingURL:    meta[MetaTrackingURL],
		ShipkiaOrderID: meta[MetaShipkiaOrderID],
	}
}

// Meta renders t as order meta key/value pairs
func (t OrderTracking) Meta() map[string]string {
	return map[string]string{
		MetaAWBNumber:      t.AWBNumber,
		MetaCourierPartner: t.CourierPartner,
		MetaDeliveryStatus: t.DeliveryStatus,
		MetaTrackingURL:    t.TrackingURL,
		MetaShipkiaOrderID: t.ShipkiaOrderID,
	}
}

// HasData reports whether any tracking field is set
func (t OrderTracking) HasData() bool {
	return t.AWBNumber != "" || t.CourierPartner != "" || t.DeliveryStatus != "" ||
		t.TrackingURL != "" || t.ShipkiaOrderID != ""
}

// Update is a partial tracking write from the platform.
// Nil fields are left untouched.
type Update struct {
	AWBNumber      *string `json:"awb_number"`
	CourierPartner *string `json:"courier_partner"`
	DeliveryStatus *string `json:"delivery_status"`
	TrackingURL    *string `json:"tracking_url"`
	ShipkiaOrderID *string `json:"shipkia_order_id"`
}

// Values returns the meta pairs u sets, trimmed of surrounding whitespace
func (u Update) Values() map[string]string {
	out := make(map[string]string)
	set := func(key string, v *string) {
		if v != nil {
			out[key] = strings.TrimSpace(*v)
		}
	}
	set(MetaAWBNumber, u.AWBNumber)
	set(MetaCourierPartner, u.CourierPartner)
	set(MetaDeliveryStatus, u.DeliveryStatus)
	set(MetaTrackingURL, u.TrackingURL)
	set(MetaShipkiaOrderID, u.ShipkiaOrderID)
	return out
}

// Validate checks the order id and that u carries at least one field
func (u Update) Validate(orderID int64) error {
	if orderID <= 0 {
		return ErrInvalidOrderID
	}
	if len(u.Values()) == 0 {
		return ErrEmptyUpdate
	}
	return nil
}

package tracking

import "github.com/shipkia/connector/internal/domain/connection"

// Placeholder is shown in place of missing tracking values
const Placeholder = "–"

// Link targets
const (
	TargetBlank = "_blank"
	TargetSelf  = "_self"
)

// ColumnLabel is the text of the track link in the admin order list
const ColumnLabel = "Track"

// ColumnView is the order-list cell content for one order.
// Primary is shown bold when Emphasis is set, Secondary beneath it.
type ColumnView struct {
	OrderID   int64  `json:"order_id"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
	Emphasis  bool   `json:"emphasis"`
	TrackURL  string `json:"track_url,omitempty"`
	TrackText string `json:"track_text,omitempty"`
	Target    string `json:"target,omitempty"`
}

// NewColumnView renders the order-list cell of t.
// Status wins over the AWB, the placeholder stands in for both.
func NewColumnView(t OrderTracking) ColumnView {
	v := ColumnView{OrderID: t.OrderID}
	switch {
	case t.DeliveryStatus != "":
		v.Primary = t.DeliveryStatus
		v.Secondary = t.AWBNumber
		v.Emphasis = true
	case t.AWBNumber != "":
		v.Primary = t.AWBNumber
	default:
		v.Primary = Placeholder
	}
	if t.TrackingURL != "" {
		v.TrackURL = t.TrackingURL
		v.TrackText = ColumnLabel
		v.Target = TargetBlank
	}
	return v
}

// CustomerView is what a customer sees for an order on the account and tracking pages
type CustomerView struct {
	OrderID        int64  `json:"order_id"`
	Visible        bool   `json:"visible"`
	TrackingURL    string `json:"tracking_url,omitempty"`
	ButtonText     string `json:"button_text,omitempty"`
	Target         string `json:"target,omitempty"`
	DeliveryStatus string `json:"delivery_status,omitempty"`
	AWBNumber      string `json:"awb_number,omitempty"`
}

// NewCustomerView renders t for customers under the store display settings.
// Nothing is shown while tracking is disabled or no tracking URL exists.
func NewCustomerView(t OrderTracking, s connection.TrackingSettings) CustomerView {
	v := CustomerView{OrderID: t.OrderID}
	if !s.Enabled || t.TrackingURL == "" {
		return v
	}
	v.Visible = true
	v.TrackingURL = t.TrackingURL
	v.ButtonText = s.ButtonText
	v.Target = LinkTarget(s.NewTab)
	v.DeliveryStatus = t.DeliveryStatus
	v.AWBNumber = t.AWBNumber
	return v
}

// LinkTarget returns the anchor target for the new-tab setting
func LinkTarget(newTab bool) string {
	if newTab {
		return TargetBlank
	}
	return TargetSelf
}

// ReportRow is one line of the tracking report
type ReportRow struct {
	OrderID        int64  `json:"order_id"`
	AWBNumber      string `json:"awb_number"`
	CourierPartner string `json:"courier_partner"`
	DeliveryStatus string `json:"delivery_status"`
	TrackingURL    string `json:"tracking_url,omitempty"`
	ButtonText     string `json:"button_text,omitempty"`
	Target         string `json:"target,omitempty"`
}

// NewReportRow renders t as a report line, missing values become the placeholder
func NewReportRow(t OrderTracking, s connection.TrackingSettings) ReportRow {
	row := ReportRow{
		OrderID:        t.OrderID,
		AWBNumber:      orPlaceholder(t.AWBNumber),
		CourierPartner: orPlaceholder(t.CourierPartner),
		DeliveryStatus: orPlaceholder(t.DeliveryStatus),
	}
	if t.TrackingURL != "" {
		row.TrackingURL = t.TrackingURL
		row.ButtonText = s.ButtonText
		row.Target = LinkTarget(s.NewTab)
	}
	return row
}

func orPlaceholder(v string) string {
	if v == "" {
		return Placeholder
	}
	return v
}

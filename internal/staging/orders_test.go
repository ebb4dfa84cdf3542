package staging

import (
	"testing"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/source"
)

func validRawOrder() source.Order {
	return source.Order{
		OrderID:            "ORD_0000000001",
		CustomerID:         "CUST_00000042",
		OrderDate:          "2024-01-15",
		OrderStatus:        "Delivered",
		PaymentMethod:      "Credit_Card",
		TotalItems:         "4",
		Subtotal:           "200",
		DiscountAmount:     "20",
		TaxAmount:          "14.40",
		ShippingCost:       "5.99",
		TotalAmount:        "200.39",
		Currency:           "usd",
		AcquisitionChannel: "Email",
		DeviceType:         "Mobile",
		IsFirstOrder:       "false",
		CreatedAt:          "2024-01-15 10:12:44",
		UpdatedAt:          "2024-01-18 08:00:00",
	}
}

var orderLoadedAt = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

func TestNormalizeOrder_FieldMapping(t *testing.T) {
	rec, rej := NormalizeOrder(validRawOrder(), orderLoadedAt, DefaultConfig())
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", *rej)
	}

	if rec.OrderStatus != domain.StatusDelivered {
		t.Errorf("OrderStatus = %q", rec.OrderStatus)
	}
	if rec.PaymentMethod != "credit_card" {
		t.Errorf("PaymentMethod = %q", rec.PaymentMethod)
	}
	if rec.Currency != "USD" {
		t.Errorf("Currency = %q, want uppercased", rec.Currency)
	}
	if rec.DeviceType != "mobile" {
		t.Errorf("DeviceType = %q", rec.DeviceType)
	}
	if !rec.HasDiscount {
		t.Error("HasDiscount = false with discount 20")
	}
	if rec.NetRevenue != 180 {
		t.Errorf("NetRevenue = %v, want 180", rec.NetRevenue)
	}
	if rec.AverageItemValue != 50.10 {
		t.Errorf("AverageItemValue = %v, want 50.10", rec.AverageItemValue)
	}
	if !rec.IsCompleted {
		t.Error("IsCompleted = false for delivered order")
	}
	if rec.IsReturnedOrCancelled {
		t.Error("IsReturnedOrCancelled = true for delivered order")
	}
	if !rec.OrderDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("OrderDate = %v", rec.OrderDate)
	}
}

func TestNormalizeOrder_StatusFlags(t *testing.T) {
	tests := []struct {
		status        string
		wantCompleted bool
		wantReturned  bool
	}{
		{"Delivered", true, false},
		{"Shipped", false, false},
		{"Cancelled", false, true},
		{"Returned", false, true},
		{"Pending", false, false},
		{"lost in transit", false, false}, // unmapped, canonicalizes to unknown
	}

	for _, tt := range tests {
		raw := validRawOrder()
		raw.OrderStatus = tt.status

		rec, rej := NormalizeOrder(raw, orderLoadedAt, DefaultConfig())
		if rej != nil {
			t.Fatalf("status %q rejected: %v", tt.status, *rej)
		}
		if rec.IsCompleted != tt.wantCompleted || rec.IsReturnedOrCancelled != tt.wantReturned {
			t.Errorf("status %q: flags = %v/%v, want %v/%v",
				tt.status, rec.IsCompleted, rec.IsReturnedOrCancelled, tt.wantCompleted, tt.wantReturned)
		}
	}
}

func TestNormalizeOrder_ZeroDiscountClears(t *testing.T) {
	raw := validRawOrder()
	raw.DiscountAmount = "0"

	rec, rej := NormalizeOrder(raw, orderLoadedAt, DefaultConfig())
	if rej != nil {
		t.Fatalf("unexpected rejection: %v", *rej)
	}
	if rec.HasDiscount {
		t.Error("HasDiscount = true with zero discount")
	}
	if rec.NetRevenue != 200 {
		t.Errorf("NetRevenue = %v, want 200", rec.NetRevenue)
	}
}

func TestNormalizeOrder_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*source.Order)
		wantField  string
		wantReason string
	}{
		{"blank id", func(r *source.Order) { r.OrderID = "" }, "order_id", ReasonMissingKey},
		{"missing customer", func(r *source.Order) { r.CustomerID = " " }, "customer_id", ReasonMissingRequired},
		{"missing order_date", func(r *source.Order) { r.OrderDate = "" }, "order_date", ReasonMissingRequired},
		{"bad order_date", func(r *source.Order) { r.OrderDate = "01/15/2024" }, "order_date", ReasonBadDate},
		{"zero total_items", func(r *source.Order) { r.TotalItems = "0" }, "total_items", ReasonNonPositive},
		{"zero subtotal", func(r *source.Order) { r.Subtotal = "0" }, "subtotal", ReasonNonPositive},
		{"negative discount", func(r *source.Order) { r.DiscountAmount = "-2" }, "discount_amount", ReasonNegative},
		{"negative tax", func(r *source.Order) { r.TaxAmount = "-0.01" }, "tax_amount", ReasonNegative},
		{"negative shipping", func(r *source.Order) { r.ShippingCost = "-1" }, "shipping_cost", ReasonNegative},
		{"zero total_amount", func(r *source.Order) { r.TotalAmount = "0" }, "total_amount", ReasonNonPositive},
		{"bad is_first_order", func(r *source.Order) { r.IsFirstOrder = "nope?" }, "is_first_order", ReasonBadBool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRawOrder()
			tt.mutate(&raw)

			rec, rej := NormalizeOrder(raw, orderLoadedAt, DefaultConfig())
			if rec != nil {
				t.Fatal("record produced, want rejection")
			}
			if rej == nil {
				t.Fatal("no rejection returned")
			}
			if rej.Field != tt.wantField || rej.Reason != tt.wantReason {
				t.Errorf("rejection = %s/%s, want %s/%s", rej.Field, rej.Reason, tt.wantField, tt.wantReason)
			}
		})
	}
}

package domain

import "time"

// Типы событий timeline.
const (
	TimelineOrderCreated         = "OrderCreated"
	TimelineItemAdded            = "ItemAdded"
	TimelineItemRejected         = "ItemRejected"
	TimelineStatusChanged        = "OrderStatusChanged"
	TimelineInventoryCommitted   = "InventoryCommitted"
	// TimelineReservationsStranded: оплата прошла, но списание не удалось и резервы остались висеть.
	TimelineReservationsStranded = "ReservationsStranded"
	TimelineConfirmationSent     = "ConfirmationSent"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	ID       string
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}

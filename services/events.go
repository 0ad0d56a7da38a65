package services

// Event names pushed to connected staff screens.
const (
	EventOrderCreated    = "order_created"
	EventOrderUpdated    = "order_updated"
	EventPaymentRecorded = "payment_recorded"
	EventRefundRecorded  = "refund_recorded"
	EventShiftClosed     = "shift_closed"
)

// Publisher receives domain events after their transaction commits. Delivery is
// best effort.
type Publisher interface {
	Publish(event string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

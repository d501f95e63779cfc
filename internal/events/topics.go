package events

// Topic constants for events emitted by a checkout session.
const (
	TopicSessionStarted         = "session.started"
	TopicCartItemAdded          = "cart.item_added"
	TopicCartItemIncremented    = "cart.item_incremented"
	TopicCartLookupFailed       = "cart.lookup_failed"
	TopicCartLineIncremented    = "cart.line_incremented"
	TopicCartLineDecremented    = "cart.line_decremented"
	TopicInvoiceDiscountChanged = "invoice.discount_changed"
)

// DefaultTopics returns every topic the display stream forwards.
func DefaultTopics() []string {
	return []string{
		TopicSessionStarted,
		TopicCartItemAdded,
		TopicCartItemIncremented,
		TopicCartLookupFailed,
		TopicCartLineIncremented,
		TopicCartLineDecremented,
		TopicInvoiceDiscountChanged,
	}
}

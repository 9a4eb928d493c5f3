package gateway

// CheckoutSession is the per-attempt state of one checkout. It is never persisted.
type CheckoutSession struct {
	Vendor string
	Token  string
	// CallbackRegistered is false when the vendor will not notify us and the
	// payment has to be verified by polling.
	CallbackRegistered bool
	NotificationID     string
}

// Package notifications publishes dump outcomes to ntfy.
//
// Pending and failed dumps always notify so an operator can file them by
// hand; filed dumps notify only when notifications.on_filed is set. With no
// topic configured the service is a no-op.
package notifications

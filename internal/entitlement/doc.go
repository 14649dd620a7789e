// Package entitlement maps the purchased tier onto the features it unlocks.
// Billing happens elsewhere; this package only reads the resulting tier.
package entitlement

//go:build !devwebhooks

package usecases

// allowUnsignedWebhooks is only true in binaries built with -tags devwebhooks.
const allowUnsignedWebhooks = false

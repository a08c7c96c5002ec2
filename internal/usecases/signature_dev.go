//go:build devwebhooks

package usecases

const allowUnsignedWebhooks = true

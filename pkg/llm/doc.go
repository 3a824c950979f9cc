// Package llm defines the adapter boundary to the inference backend. The
// adapter is opaque to the rest of the platform: it takes a composed
// analysis request and returns a draft plus token accounting. HTTPAdapter
// is the production implementation; MockAdapter serves tests.
package llm

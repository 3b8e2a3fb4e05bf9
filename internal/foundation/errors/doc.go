// Package errors provides classified error primitives used across eradio.
//
// A ClassifiedError carries a category (config, network, dataset, sitemap, ...),
// a severity and a retry strategy, plus a small context map. The HTTP and CLI
// adapters turn those into status codes, exit codes and log records.
//
// Example usage:
//
//	err := errors.NetworkError("fetch stations failed").
//		WithContext("mirror", host).
//		WithCause(originalErr).
//		Build()
package errors

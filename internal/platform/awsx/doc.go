// Package awsx implements the storage capability interfaces on top of the
// AWS SDK v2 (S3 for objects, SQS for notifications). The SDK clients are
// hidden behind narrow API interfaces so tests can substitute fakes.
package awsx

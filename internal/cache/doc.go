// Package cache provides an LRU cache for immutable byte blobs.
//
// Entries may be charged against a resource.Controller, in which case the
// cache only holds what the controller's memory limit admits.
package cache

// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Terminal semester browser, JSON snapshot export, moon separation
// 0.2.0 - Worker-pool semester computation, per-target visibility cache
// 0.1.0 - Initial release: night windows, dome observability, headless summary

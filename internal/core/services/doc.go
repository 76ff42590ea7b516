// Package services implements the driving port interfaces.
// Services contain the core comprehension logic and orchestrate
// calls to driven ports (adapters).
//
// Services hold no global state: the selected backend, configuration and
// observers arrive through constructors.
package services

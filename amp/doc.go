// Package amp rewrites rendered AMP story documents before they are stored:
// it marks videos for the AMP cache and injects gtag analytics.
package amp

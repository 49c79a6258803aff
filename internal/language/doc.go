// Package language normalizes the language codes accepted by the panels and
// CLI into BCP 47 tags for the Google speech APIs, and renders display names
// for output tables.
package language

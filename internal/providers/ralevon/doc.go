// Package ralevon implements providers.Site for the Ralevon reader. Pages
// are rendered by the shared browser session; extraction runs on the
// rendered DOM with goquery so it can be exercised on static fixtures.
package ralevon

// Package inject places generated HTML fragments into a page template at
// type-appropriate positions.
//
// Meta tags cluster after the last meta tag in the head, data scripts
// after the last script pair in the head, and body scripts after the last
// script pair in the body, each with a fallback chain down to the document
// edges. Anchoring on the last tag of each type makes repeated same-type
// injections land contiguously, which keeps the generated head and body
// groups readable.
package inject

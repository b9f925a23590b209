// Package sanitizer provides input normalization for guest submissions.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions never fail; invalid input is passed through for the
// validator to reject.
//
// Normalization includes:
//   - Names: collapse whitespace, trim leading/trailing spaces
//   - Emails: trim and lowercase
//   - Government ID numbers: remove all whitespace, uppercase ("abcd 1234" becomes "ABCD1234");
//     dashes and other punctuation are kept so the format check can reject them
//   - Optional strings: blank values become nil
package sanitizer

// Package normalize maps decoded poll-result bodies into a canonical
// [PollResponse].
//
// The remote API answers in one of two shapes:
//
//	flat:   {"request_id": "...", "status": "pending", "progress": 40, ...}
//	nested: {"status": 1, "data": {"request_id": "...", "status": "pending", ...}}
//
// The shape is resolved once, at the normalization boundary, into a [Shape]
// tag. Callers never look at raw field names. Normalization is total over
// JSON objects; anything else is a [FormatError].
package normalize

// Package receeco is a client for the Receeco digital receipt API.
//
// The client exposes three operations, each a single HTTP round trip to the
// service's tRPC endpoint:
//
//   - [Client.CreateReceipt]: validate a receipt, label it with a
//     client-generated token and short code, and submit it.
//   - [Client.GetReceipt]: fetch a receipt by token or short code.
//   - [Client.UpdateReceiptContact]: attach customer contact details.
//
// Responses arrive in a {"result": ...} or {"error": ...} envelope and are
// reduced by [Normalize] to the result value or an [*Error]. Every failure the
// package returns is an *Error carrying a machine-readable Code; compare with
// errors.Is against the Err* sentinels or use [CodeOf].
//
// The client does not retry, cache, queue or batch.
package receeco

// Package booking is the reservation engine: per-session state plus the
// transactional Book, Pay, Reservations and Cancel operations.
//
// A Service holds what every session shares (the store, the search cache,
// the retry policy). A Session holds what one client owns (the logged-in
// user and the itineraries of its last search). Sessions are independent;
// many can run in one process against one store, and cross-session
// coordination is left entirely to the store's serializable transactions.
//
// # Outcomes
//
// Every operation returns either success or a single terminal outcome.
// Business outcomes are *Error values (match with errors.Is against the
// Err* sentinels or with CodeOf). Transient storage conflicts never reach
// the caller: the whole operation is re-run until it succeeds or fails for
// another reason. Any other error is an unexpected storage failure.
//
// Business rejections inside a transaction (same-day conflict, full flight,
// insufficient funds, unknown reservation) are recorded and the transaction
// is committed without having written anything.
//
// A Session is not safe for concurrent use.
package booking

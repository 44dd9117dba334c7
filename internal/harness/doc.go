// Package harness runs scripted booking scenarios end to end.
//
// A scenario is a YAML file naming a flight table, an ordered list of shell
// commands issued by one or more named sessions, and assertions on the final
// database state. Each run gets a fresh in-memory store, so scenarios never
// observe each other.
//
// Every session is a shell.Interpreter over its own booking.Session. Commands
// run sequentially in file order, which makes interleavings between sessions
// explicit and the transcript deterministic. Session ids come from
// testutil.SequentialSessionIDs for the same reason.
//
// # Scenario format
//
//	name: pay_then_cancel
//	description: "A paid reservation is refunded on cancel"
//	flights:
//	  - {fid: 1, day_of_month: 10, carrier_id: AS, flight_num: "1",
//	     origin_city: "Seattle WA", dest_city: "Boston MA",
//	     duration: 300, capacity: 3, price: 500}
//	steps:
//	  - session: alice
//	    command: create alice pw 800
//	    expect: "Created user alice"
//	  - session: alice
//	    command: login alice pw
//	assertions:
//	  - type: balance
//	    user: alice
//	    value: 800
//
// Step expectations are checked against the trimmed command output: expect
// must match exactly, contains must appear somewhere in it. A step without
// either only contributes to the transcript.
//
// # Golden transcripts
//
// RunWithGolden renders the transcript and compares it with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness

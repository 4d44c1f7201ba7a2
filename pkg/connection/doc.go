// Package connection provides the backoff calculator a device.Session
// uses between attempts of its initial TCP dial.
//
// This package handles:
//   - Exponential backoff between dial attempts
//   - Jitter to prevent thundering herd against a single device
//
// # Dial Retry Strategy
//
// When a session's initial TCP dial fails, the session backs off before
// trying again:
//
//  1. Initial delay: 250 milliseconds
//  2. Exponential increase: 500ms, 1s, 2s
//  3. Maximum delay: 4 seconds
//  4. Give up once the session's DialAttempts attempts (3 by default)
//     have all failed
//
// A connection lost after a successful dial is not redialled here: the
// session terminates, and a new one is created on the device's next
// announcement.
//
// # Jitter
//
// To prevent thundering herd when several sessions dial at once:
//
//	actual_delay = base_delay + random(0, base_delay * 0.2)
//
// # Success Criteria
//
// A dial attempt succeeds as soon as the TCP connection to the device's
// control port (6668 by default) completes.
package connection

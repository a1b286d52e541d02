// Package auth implements the session and role-based access control core of
// the CareBridge elder-care portal: credential verification against an
// external identity service, a single-writer session store, and the routing
// decisions that gate each role's application area.
//
// Roles:
//   - Role is a closed enumeration (admin, doctor, caregiver, family). Every
//     session carries exactly one role and every protected area requires
//     exactly one role. HomeRoute and RequiredRole form a total bijection
//     between roles and areas, so landing on your own home route never
//     bounces you back to login.
//
// Sessions:
//   - SessionStore is an explicitly-owned object with a single writer (the
//     AuthFlow controller) and many readers. A session is either fully absent
//     or fully populated; partial sessions are rejected as a programming
//     error. An optional Persister keeps the session and the remembered
//     login email in local storage across restarts.
//
// Flows:
//   - AuthFlow drives login, signup, password reset, and logout as a small
//     state machine (Idle, Submitting, Succeeded, Failed). Only one
//     submission may be in flight at a time; responses that arrive after the
//     controller was closed or reset are discarded and never touch the
//     store. The Credential Verifier is reached through the Verifier
//     interface, with HTTPVerifier as the production client.
package auth

// Package auth provides the user model and authentication for HomeGuardian.
//
// It implements a two-tier role model (guest → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT session tokens naming the acting user
//   - Per-guest device grants resolved by User.PermitsDevice
//   - Static role-permission mapping (compile-time, no database lookup)
//
// Device scoping uses a "zero access by default, grant explicitly" model:
// a guest with no accessible devices cannot control anything. An admin
// grants access to specific devices through the controller. Admins bypass
// device scoping entirely.
package auth

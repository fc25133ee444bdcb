// Package password hashes and verifies user passwords with bcrypt.
//
// Hashes are self-describing: the algorithm version, the cost factor and the
// salt are embedded in the returned string, so a hash produced with one cost
// still verifies after the configured cost changes.
//
//	h := password.NewHasher() // cost 12
//	hash, err := h.Hash("Password123!")
//	ok := h.Verify("Password123!", hash)
package password

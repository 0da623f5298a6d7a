package zarrstore

// SupportsWrites reports whether the Store accepts set/delete. Always true.
func (s *Store) SupportsWrites() bool { return true }

// SupportsPartialWrites reports whether the Store accepts set_partial_values.
// Always false (spec.md §4.3, Non-goals).
func (s *Store) SupportsPartialWrites() bool { return false }

// SupportsListing reports whether the Store accepts list/list_prefix/list_dir.
// Always true.
func (s *Store) SupportsListing() bool { return true }

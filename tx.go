package atlas

// TxHandle is returned by Store.Tx. Full transactional rollback of
// optimistic writes is sketched in the source this spec distills from but
// never implemented there either (spec §9 "Transactional rollback"); per
// that design note's option (a), this revision keeps write atomic per call
// and Tx a convenience grouping only — Commit and Rollback are both no-ops.
type TxHandle struct{}

// Commit is a no-op: every write inside callback already committed when it
// returned, same as calling Store.Write directly.
func (TxHandle) Commit() error { return nil }

// Rollback is a no-op. There is no log of prior state to reapply; see the
// note on TxHandle.
func (TxHandle) Rollback() error { return nil }

// Tx runs callback(store) synchronously and returns a handle whose
// Commit/Rollback are no-ops (spec §6, §9).
func (s *Store) Tx(callback func(*Store) error) (TxHandle, error) {
	if err := callback(s); err != nil {
		return TxHandle{}, err
	}
	return TxHandle{}, nil
}

/*
Package dump provides I/O operations for collected states of the ledger
contracts.

State collection (including storage) allows you to reopen the ledger from a
known state elsewhere, e.g. in tests. For state reproducibility, it is
necessary to be able to persist (dump) information about the contracts along
with their data, as well as read and restore ready-made dumps.

The package works with dumps stored in the file system using human-readable
encoding.
*/
package dump

/*
Package core assembles the ledger services. It's built around the Node
structure that owns the ledger state, fee calculation and the transaction
processor.

# Transactions

Node handles transactions one at a time, each one is either applied with its
fees charged or rolled back with only fees charged (unless it fails prechecks,
such transactions are not charged at all). Changes are persisted after every
transaction.

# System files

Fee schedules and exchange rates live in system files. They're loaded by Init
and reloaded whenever the file is updated by a transaction, so a price update
takes effect for the transactions following it. Bootstrap creates these files
along with the initial accounts on an empty store.
*/
package core

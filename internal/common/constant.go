package common

// TimestampLayout is the day-first wall-clock format shared by the ledger,
// the audit log and the remote registry sheet.
const TimestampLayout = "02/01/2006 15:04:05"

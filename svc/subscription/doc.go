// Package subscription keeps the link between a member and the payment
// processor: the processor customer, the processor subscription and the
// current plan. There is at most one record per member, stored in the
// member_plan table.
//
// Store methods take a pg.DBTX so they run on the pool or inside the
// transaction of a task sequence. Tasks builds the tasks that read and write
// the record; they only ever use the transaction handed to them by the
// runner.
package subscription

/*
Package orm is the declarative surface of the module: register tagged model
structs on an [ORM], connect, and the schemas migrate themselves; then reach
for the basic accessors (Insert, First, Find, All, Update, Delete, Exists),
the chainable query builder, or raw SQL passthrough when the accessors run
out.

The typed layer wraps the same operations with generics. A [Table] is a
handle to the table backing T, a [Record] carries instance-level update and
delete, and a [Query] renders typed results from chained filter calls.
*/
package orm

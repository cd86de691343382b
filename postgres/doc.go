/*
Package postgres manages the database connection and the SQL the module
generates. As part of the connection process, it ensures all migrations have
been run on the proper database. The situation where the database is simply a
target for some testing has been considered as well; in that scenario, the
public schema is dropped and recreated first.

The [DB] facade executes statements and raw queries through the underlying
driver, translating its errors into the slintrust sentinel vocabulary. The
[Builder] accumulates chained clauses and renders exactly that accumulated
state into one parameterized SELECT with numbered placeholders. Everything
below statement execution, such as pooling, transaction isolation and the
wire protocol, belongs to the driver.
*/
package postgres

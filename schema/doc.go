/*
Package schema derives database table descriptions from tagged Go structs.

A model struct is parsed once, at registration time, into a [Table] holding
the ordered set of [Column] definitions for it. The "db" and "slint" struct
tags steer the derivation; everything else falls out of field names and
types. The resulting Table renders its own idempotent CREATE TABLE statement
and pulls ordered column values off model instances for INSERT and UPDATE
statements built elsewhere.
*/
package schema

/*
Package logger provides leveled logging by defining the required behavior in
[Logger] and providing an implementation of it with [SlintLogger].

An implementation of Logger may be initialized at a certain [LogLevel] and
only emit messages at or above that level of importance. Log messages emitted
by [SlintLogger] are composed of a timestamp, log level, call site, message
and a JSON-encoded [LogContext]:

	2022/04/28 15:55:21 [DEBUG] orm/orm.go:143 'migrated table' log_context: {"data":{"table":"users"}}

When the SENTRY_DSN environment variable is set, [New] wraps the SlintLogger
in a [SentryLogger], which additionally ships warning, error and fatal events
to Sentry.
*/
package logger

/*
Package log provides structured logging shared by the arbiter and shard node
processes, built on zerolog.

Call Init once at process start, then derive component- and entity-scoped
child loggers with WithComponent, WithNodeAddr, WithGroupID, and
WithShardIndex rather than writing to the global Logger directly from deep
call paths.
*/
package log

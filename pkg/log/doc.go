/*
Package log provides structured logging for NetLens using zerolog.

It wraps zerolog with a global logger, configurable level and output format
(JSON for production, console for development), and child-logger helpers
scoped to the platform's domain: WithComponent for subsystems, WithProject
for project-scoped operations, WithDevice for parser and device endpoints,
and WithJob for LLM analysis jobs.

Initialize once at startup:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

then derive scoped loggers where useful:

	logger := log.WithJob(projectID, string(kind))
	logger.Info().Msg("analysis job accepted")
*/
package log

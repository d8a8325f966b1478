// Package logger provides structured logging for scod using zerolog.
//
// It supports JSON and console output, level configuration, and named
// loggers tagged with the component that owns them. The resolution engine
// logs through logger.Get("di") unless a session is given its own logger.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Debug("component constructed", logger.Fields("component", "client"))
package logger

// Package logger builds the diagnostic logger the CLI writes to stderr.
package logger

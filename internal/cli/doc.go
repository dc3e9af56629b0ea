// Package cli parses command-line arguments, layers flags over the saved
// settings and maps failures to process exit codes.
package cli

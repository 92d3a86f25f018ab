// Package tomorin is a chat-driven remote execution front end: shell
// commands and Rust snippets sent from a trusted chat account are executed
// and their output is rendered back into the chat as it arrives.
package tomorin

// Version is the released version of tomorin.
const Version = "0.4.0"

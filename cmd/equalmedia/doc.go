// Command equalmedia is the EqualMedia accessibility CLI.
//
// "equalmedia serve" runs the document sandbox: the in-memory document, its
// IPC socket and the HTTP panel API. The other commands act as the panels.
// They call Google Speech-to-Text and Text-to-Speech from the CLI process and
// insert the results into the running sandbox over the socket.
package main
